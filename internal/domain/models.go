package domain

// Entity is implemented by every exported record. Identity is assigned by the
// storage layer and never travels in a JSON body.
type Entity[T any] interface {
	GetID() int64
	WithID(id int64) T
}

// Customer represents a customer of the travel desk
type Customer struct {
	ID        int64   `json:"-"`         // Unique identifier
	FirstName *string `json:"firstName"` // Given name
	LastName  *string `json:"lastName"`  // Family name
	Address   *string `json:"address"`   // Postal address, free text
	Trip      *string `json:"trip"`      // Trip label; not a reference to Trip
}

func (c Customer) GetID() int64 { return c.ID }

func (c Customer) WithID(id int64) Customer {
	c.ID = id
	return c
}

// Trip represents a planned journey
type Trip struct {
	ID          int64   `json:"-"`           // Unique identifier
	Destination *string `json:"destination"` // Where the trip goes
	StartDate   *string `json:"startDate"`   // Free text, not validated as a date
	EndDate     *string `json:"endDate"`     // Free text, not validated as a date
}

func (t Trip) GetID() int64 { return t.ID }

func (t Trip) WithID(id int64) Trip {
	t.ID = id
	return t
}

// Text returns a pointer to s, for building optional fields.
func Text(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
