package testutil

import (
	"context"
	"testing"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/migrations"
)

// SetupTestDB creates an in-memory datastore that is closed when the test ends
func SetupTestDB(t *testing.T, testName string) *datastore.Datastore {
	t.Helper()

	ds, err := datastore.New(NewTestDSN(testName))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := ds.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return ds
}

// SetupTestDBWithMigrations creates an in-memory datastore with the full schema applied
func SetupTestDBWithMigrations(t *testing.T, testName string) *datastore.Datastore {
	t.Helper()

	ds := SetupTestDB(t, testName)
	if err := migrations.NewDefaultMigrator(ds).RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return ds
}
