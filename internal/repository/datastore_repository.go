package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/domain"
)

// Column maps an entity property to its table column.
type Column struct {
	Property string
	Name     string
}

// Mapping describes how an entity type is stored.
type Mapping[T any] struct {
	Entity  string   // singular name used in error messages
	Table   string   // table name; identity column is always "id"
	Columns []Column // persistent properties, identity excluded

	// Values returns column values in Columns order
	Values func(entity T) []any
	// Scan returns scan destinations: the identity first, then Columns order
	Scan func(entity *T) []any
}

func (m Mapping[T]) column(property string) (string, bool) {
	for _, c := range m.Columns {
		if c.Property == property {
			return c.Name, true
		}
	}
	if property == "id" {
		return "id", true
	}
	return "", false
}

// DatastoreRepository provides a generic implementation of Repository
// for any entity described by a Mapping.
type DatastoreRepository[T domain.Entity[T]] struct {
	ds      *datastore.Datastore
	mapping Mapping[T]
	stmts   *StatementCache

	selectSQL string
}

// NewDatastoreRepository creates a new generic repository
func NewDatastoreRepository[T domain.Entity[T]](ds *datastore.Datastore, mapping Mapping[T]) *DatastoreRepository[T] {
	cols := make([]string, 0, len(mapping.Columns)+1)
	cols = append(cols, "id")
	for _, c := range mapping.Columns {
		cols = append(cols, c.Name)
	}

	return &DatastoreRepository[T]{
		ds:        ds,
		mapping:   mapping,
		stmts:     NewStatementCache(ds),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), mapping.Table),
	}
}

// GetDatastore returns the underlying datastore (useful for specific implementations)
func (r *DatastoreRepository[T]) GetDatastore() *datastore.Datastore {
	return r.ds
}

// Close releases cached prepared statements
func (r *DatastoreRepository[T]) Close() error {
	return r.stmts.Close()
}

// Properties lists the mapped properties in column order
func (r *DatastoreRepository[T]) Properties() []string {
	props := make([]string, len(r.mapping.Columns))
	for i, c := range r.mapping.Columns {
		props[i] = c.Property
	}
	return props
}

// Save creates or updates an entity
func (r *DatastoreRepository[T]) Save(ctx context.Context, entity T) (T, error) {
	if entity.GetID() == 0 {
		return r.Create(ctx, entity)
	}

	sets := make([]string, len(r.mapping.Columns))
	for i, c := range r.mapping.Columns {
		sets[i] = c.Name + " = ?"
	}
	stmt, err := r.stmts.Get(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.mapping.Table, strings.Join(sets, ", ")))
	if err != nil {
		return entity, fmt.Errorf("failed to update %s: %w", r.mapping.Entity, err)
	}

	args := append(r.mapping.Values(entity), entity.GetID())
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return entity, fmt.Errorf("failed to update %s: %w", r.mapping.Entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return entity, fmt.Errorf("failed to update %s: %w", r.mapping.Entity, err)
	}
	if n == 0 {
		return entity, fmt.Errorf("%s with ID %d: %w", r.mapping.Entity, entity.GetID(), ErrNotFound)
	}
	return entity, nil
}

// Create inserts an entity, keeping a caller-assigned ID if set
func (r *DatastoreRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	if entity.GetID() < 0 {
		return entity, fmt.Errorf("%s ID %d must be positive: %w", r.mapping.Entity, entity.GetID(), ErrInvalidEntity)
	}

	cols := make([]string, 0, len(r.mapping.Columns)+1)
	args := make([]any, 0, len(r.mapping.Columns)+1)
	if entity.GetID() != 0 {
		cols = append(cols, "id")
		args = append(args, entity.GetID())
	}
	for _, c := range r.mapping.Columns {
		cols = append(cols, c.Name)
	}
	args = append(args, r.mapping.Values(entity)...)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := r.stmts.Get(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.mapping.Table, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return entity, fmt.Errorf("failed to create %s: %w", r.mapping.Entity, err)
	}

	var id int64
	if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
		if r.ds.Dialect.IsUniqueViolation(err) {
			return entity, fmt.Errorf("%s with ID %d: %w", r.mapping.Entity, entity.GetID(), ErrDuplicate)
		}
		return entity, fmt.Errorf("failed to create %s: %w", r.mapping.Entity, err)
	}
	return entity.WithID(id), nil
}

// FindByID retrieves an entity by its ID
func (r *DatastoreRepository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var entity T
	stmt, err := r.stmts.Get(ctx, r.selectSQL+" WHERE id = ?")
	if err != nil {
		return entity, fmt.Errorf("failed to find %s: %w", r.mapping.Entity, err)
	}

	if err := stmt.QueryRowContext(ctx, id).Scan(r.mapping.Scan(&entity)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity, fmt.Errorf("%s with ID %d: %w", r.mapping.Entity, id, ErrNotFound)
		}
		return entity, fmt.Errorf("failed to find %s: %w", r.mapping.Entity, err)
	}
	return entity, nil
}

// FindAll retrieves all entities
func (r *DatastoreRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.query(ctx, r.selectSQL+" ORDER BY id ASC")
}

// FindAllBy retrieves entities whose property equals value. A nil value matches NULL.
func (r *DatastoreRepository[T]) FindAllBy(ctx context.Context, property string, value *string) ([]T, error) {
	col, ok := r.mapping.column(property)
	if !ok {
		return nil, fmt.Errorf("%s has no property %q: %w", r.mapping.Entity, property, ErrUnknownProperty)
	}
	if value == nil {
		return r.query(ctx, fmt.Sprintf("%s WHERE %s IS NULL ORDER BY id ASC", r.selectSQL, col))
	}
	return r.query(ctx, fmt.Sprintf("%s WHERE %s = ? ORDER BY id ASC", r.selectSQL, col), *value)
}

// FindByDerived runs a derived query method such as "findByLastName".
func (r *DatastoreRepository[T]) FindByDerived(ctx context.Context, method string, value *string) ([]T, error) {
	property, err := ParseFinder(method)
	if err != nil {
		return nil, err
	}
	return r.FindAllBy(ctx, property, value)
}

// FindPage retrieves one page of entities
func (r *DatastoreRepository[T]) FindPage(ctx context.Context, pageable Pageable) (Page[T], error) {
	if err := pageable.Validate(); err != nil {
		return Page[T]{}, err
	}

	orderBy := make([]string, 0, len(pageable.Sort)+1)
	sortedByID := false
	for _, o := range pageable.Sort {
		col, ok := r.mapping.column(o.Property)
		if !ok {
			return Page[T]{}, fmt.Errorf("cannot sort %s by %q: %w", r.mapping.Entity, o.Property, ErrInvalidPageable)
		}
		sortedByID = sortedByID || col == "id"
		orderBy = append(orderBy, col+" "+strings.ToUpper(string(o.Direction)))
	}
	// Tie-break on identity so pages are stable
	if !sortedByID {
		orderBy = append(orderBy, "id ASC")
	}

	total, err := r.Count(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	content, err := r.query(ctx,
		fmt.Sprintf("%s ORDER BY %s LIMIT ? OFFSET ?", r.selectSQL, strings.Join(orderBy, ", ")),
		pageable.Size, pageable.Offset())
	if err != nil {
		return Page[T]{}, err
	}
	return NewPage(content, pageable, total), nil
}

// Count returns the number of stored entities
func (r *DatastoreRepository[T]) Count(ctx context.Context) (int64, error) {
	stmt, err := r.stmts.Get(ctx, "SELECT COUNT(*) FROM "+r.mapping.Table)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.mapping.Table, err)
	}
	var count int64
	if err := stmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.mapping.Table, err)
	}
	return count, nil
}

// DeleteByID deletes an entity by its ID
func (r *DatastoreRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	stmt, err := r.stmts.Get(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.mapping.Table))
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.mapping.Entity, err)
	}
	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.mapping.Entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.mapping.Entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s with ID %d: %w", r.mapping.Entity, id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every entity
func (r *DatastoreRepository[T]) DeleteAll(ctx context.Context) error {
	if _, err := r.ds.DB.ExecContext(ctx, "DELETE FROM "+r.mapping.Table); err != nil {
		return fmt.Errorf("failed to delete all %s: %w", r.mapping.Table, err)
	}
	return nil
}

// ExistsByID checks if an entity exists by its ID
func (r *DatastoreRepository[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	stmt, err := r.stmts.Get(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", r.mapping.Table))
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", r.mapping.Entity, err)
	}
	var count int
	if err := stmt.QueryRowContext(ctx, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", r.mapping.Entity, err)
	}
	return count > 0, nil
}

func (r *DatastoreRepository[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	stmt, err := r.stmts.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.mapping.Table, err)
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.mapping.Table, err)
	}
	defer rows.Close()

	entities := []T{}
	for rows.Next() {
		var entity T
		if err := rows.Scan(r.mapping.Scan(&entity)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.mapping.Entity, err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.mapping.Table, err)
	}
	return entities, nil
}
