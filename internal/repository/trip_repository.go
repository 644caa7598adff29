package repository

import (
	"context"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/domain"
)

// TripRepository extends the generic Repository with trip-specific finders
type TripRepository interface {
	Repository[domain.Trip, int64]

	// FindByDestination returns trips going to destination; nil matches an unset destination
	FindByDestination(ctx context.Context, destination *string) ([]domain.Trip, error)
}

var tripMapping = Mapping[domain.Trip]{
	Entity: "trip",
	Table:  "trips",
	Columns: []Column{
		{Property: "destination", Name: "destination"},
		{Property: "startDate", Name: "start_date"},
		{Property: "endDate", Name: "end_date"},
	},
	Values: func(t domain.Trip) []any {
		return []any{t.Destination, t.StartDate, t.EndDate}
	},
	Scan: func(t *domain.Trip) []any {
		return []any{&t.ID, &t.Destination, &t.StartDate, &t.EndDate}
	},
}

type tripRepositoryImpl struct {
	*DatastoreRepository[domain.Trip]
}

// NewTripRepository creates a new trip repository
func NewTripRepository(ds *datastore.Datastore) TripRepository {
	return &tripRepositoryImpl{
		DatastoreRepository: NewDatastoreRepository(ds, tripMapping),
	}
}

// FindByDestination retrieves trips by destination
func (r *tripRepositoryImpl) FindByDestination(ctx context.Context, destination *string) ([]domain.Trip, error) {
	return r.FindByDerived(ctx, "findByDestination", destination)
}
