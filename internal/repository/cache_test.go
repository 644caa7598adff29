package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/testutil"
)

func TestStatementCache(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, t.Name())
	cache := NewStatementCache(ds)
	ctx := context.Background()

	first, err := cache.Get(ctx, "SELECT COUNT(*) FROM customers WHERE last_name = ?")
	require.NoError(t, err)
	again, err := cache.Get(ctx, "SELECT COUNT(*) FROM customers WHERE last_name = ?")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, cache.Len())

	var n int
	require.NoError(t, first.QueryRowContext(ctx, "Baggins").Scan(&n))
	assert.Zero(t, n)

	_, err = cache.Get(ctx, "SELECT COUNT(*) FROM trips")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Evict("SELECT COUNT(*) FROM trips"))
	assert.Equal(t, 1, cache.Len())
	require.NoError(t, cache.Evict("not cached"))

	require.NoError(t, cache.Close())
	assert.Zero(t, cache.Len())

	// Still usable after Close
	_, err = cache.Get(ctx, "SELECT COUNT(*) FROM trips")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestStatementCache_BadQuery(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, t.Name())
	cache := NewStatementCache(ds)
	ctx := context.Background()

	// sqlite defers compilation to first use, so the error shows up there
	stmt, err := cache.Get(ctx, "SELECT COUNT(*) FROM no_such_table")
	if err == nil {
		var n int
		err = stmt.QueryRowContext(ctx).Scan(&n)
	}
	assert.ErrorContains(t, err, "no_such_table")
}

func TestStatementCache_PrepareFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cache := NewStatementCache(&datastore.Datastore{DB: db, Dialect: datastore.SQLite})

	mock.ExpectPrepare("SELECT COUNT").WillReturnError(errors.New("syntax error"))
	_, err = cache.Get(context.Background(), "SELECT COUNT(*) FROM trips")
	assert.ErrorContains(t, err, "syntax error")
	assert.Zero(t, cache.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}
