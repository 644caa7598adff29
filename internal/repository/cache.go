package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
)

// StatementCache prepares each query once per datastore. Queries are
// written with ? placeholders and rebound for the datastore's dialect.
type StatementCache struct {
	mu    sync.RWMutex
	ds    *datastore.Datastore
	stmts map[string]*sql.Stmt
}

func NewStatementCache(ds *datastore.Datastore) *StatementCache {
	return &StatementCache{ds: ds, stmts: make(map[string]*sql.Stmt)}
}

// Get returns the prepared form of query, preparing it on first use.
func (c *StatementCache) Get(ctx context.Context, query string) (*sql.Stmt, error) {
	query = c.ds.Dialect.Rebind(query)

	c.mu.RLock()
	stmt, ok := c.stmts[query]
	c.mu.RUnlock()
	if ok {
		return stmt, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have prepared it meanwhile
	if stmt, ok := c.stmts[query]; ok {
		return stmt, nil
	}

	stmt, err := c.ds.DB.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare %q: %w", query, err)
	}
	c.stmts[query] = stmt
	return stmt, nil
}

// Evict closes and forgets one query.
func (c *StatementCache) Evict(query string) error {
	query = c.ds.Dialect.Rebind(query)

	c.mu.Lock()
	stmt, ok := c.stmts[query]
	delete(c.stmts, query)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return stmt.Close()
}

// Close closes every cached statement. The cache stays usable afterwards.
func (c *StatementCache) Close() error {
	c.mu.Lock()
	stmts := c.stmts
	c.stmts = make(map[string]*sql.Stmt)
	c.mu.Unlock()

	var errs []error
	for _, stmt := range stmts {
		errs = append(errs, stmt.Close())
	}
	return errors.Join(errs...)
}

func (c *StatementCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stmts)
}
