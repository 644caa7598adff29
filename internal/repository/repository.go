package repository

import "context"

// Repository defines the basic CRUD operations for any entity type.
// This follows a similar pattern to Spring Data's CrudRepository interface.
type Repository[T any, ID comparable] interface {
	// Save creates an entity when its ID is zero, otherwise updates it
	// Returns ErrNotFound when updating an entity that doesn't exist
	Save(ctx context.Context, entity T) (T, error)

	// Create inserts an entity, keeping a caller-assigned ID if one is set
	// Returns ErrDuplicate if the ID is already taken
	Create(ctx context.Context, entity T) (T, error)

	// FindByID retrieves an entity by its ID
	// Returns ErrNotFound if the entity doesn't exist
	FindByID(ctx context.Context, id ID) (T, error)

	// FindAll retrieves all entities ordered by ID
	FindAll(ctx context.Context) ([]T, error)

	// FindPage retrieves one page of entities
	FindPage(ctx context.Context, pageable Pageable) (Page[T], error)

	// Count returns the number of stored entities
	Count(ctx context.Context) (int64, error)

	// DeleteByID deletes an entity by its ID
	// Returns ErrNotFound if the entity doesn't exist
	DeleteByID(ctx context.Context, id ID) error

	// DeleteAll removes every entity
	DeleteAll(ctx context.Context) error

	// ExistsByID checks if an entity exists by its ID
	ExistsByID(ctx context.Context, id ID) (bool, error)

	// Properties lists the entity's persistent properties, identity excluded
	Properties() []string
}
