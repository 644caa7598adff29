package repository

import (
	"context"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/domain"
)

// CustomerRepository extends the generic Repository with customer-specific finders
type CustomerRepository interface {
	Repository[domain.Customer, int64]

	// FindByLastName returns customers whose last name equals name; nil matches an unset last name
	FindByLastName(ctx context.Context, name *string) ([]domain.Customer, error)
}

var customerMapping = Mapping[domain.Customer]{
	Entity: "customer",
	Table:  "customers",
	Columns: []Column{
		{Property: "firstName", Name: "first_name"},
		{Property: "lastName", Name: "last_name"},
		{Property: "address", Name: "address"},
		{Property: "trip", Name: "trip"},
	},
	Values: func(c domain.Customer) []any {
		return []any{c.FirstName, c.LastName, c.Address, c.Trip}
	},
	Scan: func(c *domain.Customer) []any {
		return []any{&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.Trip}
	},
}

// customerRepositoryImpl implements CustomerRepository
type customerRepositoryImpl struct {
	*DatastoreRepository[domain.Customer]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(ds *datastore.Datastore) CustomerRepository {
	return &customerRepositoryImpl{
		DatastoreRepository: NewDatastoreRepository(ds, customerMapping),
	}
}

// FindByLastName retrieves customers by last name
func (r *customerRepositoryImpl) FindByLastName(ctx context.Context, name *string) ([]domain.Customer, error) {
	return r.FindByDerived(ctx, "findByLastName", name)
}
