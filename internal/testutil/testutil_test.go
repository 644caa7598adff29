package testutil

import (
	"strings"
	"testing"
)

func TestNewTestDSN(t *testing.T) {
	dsn := NewTestDSN("TestName")
	if !strings.Contains(dsn, "file:TestName?mode=memory&cache=shared") {
		t.Errorf("NewTestDSN did not generate expected DSN, got: %s", dsn)
	}
}

func TestSetupTestDB(t *testing.T) {
	ds := SetupTestDB(t, "TestSetupTestDB")

	if ds == nil || ds.DB == nil {
		t.Fatal("Expected non-nil database")
	}

	if err := ds.DB.Ping(); err != nil {
		t.Errorf("Database ping failed: %v", err)
	}

	var result string
	if err := ds.DB.QueryRow("SELECT 'test'").Scan(&result); err != nil {
		t.Errorf("Test query failed: %v", err)
	}
	if result != "test" {
		t.Errorf("Expected 'test', got '%s'", result)
	}
}

func TestSetupTestDBWithMigrations(t *testing.T) {
	ds := SetupTestDBWithMigrations(t, "TestSetupTestDBWithMigrations")

	for _, table := range []string{"schema_migrations", "customers", "trips"} {
		var name string
		err := ds.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected %s table to exist: %v", table, err)
		}
	}
}
