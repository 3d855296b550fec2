package db

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Repositories {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "selene-test.db")
	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return NewRepositories(database)
}

func stringPointer(value string) *string {
	return &value
}

func floatPointer(value float64) *float64 {
	return &value
}

func intPointer(value int) *int {
	return &value
}

func boolPointer(value bool) *bool {
	return &value
}

func stringsPointer(values ...string) *[]string {
	return &values
}
