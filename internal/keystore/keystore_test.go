package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terraincognita07/selene/internal/db"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "selene.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := database.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return database
}

func TestSetGetRoundTrip(t *testing.T) {
	store, err := Open(openTestDatabase(t), filepath.Join(t.TempDir(), "secret"))
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}

	if err := store.Set("session_token", "token-value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := store.Get("session_token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != "token-value" {
		t.Fatalf("expected stored value, got %q found=%v", value, found)
	}
}

func TestGetMissingKey(t *testing.T) {
	store, err := Open(openTestDatabase(t), filepath.Join(t.TempDir(), "secret"))
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}

	_, found, err := store.Get("absent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected missing key to report not found")
	}
}

func TestSetOverwritesExistingValue(t *testing.T) {
	store, err := Open(openTestDatabase(t), filepath.Join(t.TempDir(), "secret"))
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}

	if err := store.Set("session_token", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set("session_token", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, found, err := store.Get("session_token")
	if err != nil || !found {
		t.Fatalf("get after overwrite: %v found=%v", err, found)
	}
	if value != "second" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}

func TestValuesSurviveReopenWithSameSecret(t *testing.T) {
	database := openTestDatabase(t)
	secretPath := filepath.Join(t.TempDir(), "secret")

	first, err := Open(database, secretPath)
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}
	if err := first.Set("session_token", "persisted"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := Open(database, secretPath)
	if err != nil {
		t.Fatalf("reopen keystore: %v", err)
	}
	value, found, err := second.Get("session_token")
	if err != nil || !found {
		t.Fatalf("get after reopen: %v found=%v", err, found)
	}
	if value != "persisted" {
		t.Fatalf("expected value readable with same secret, got %q", value)
	}
}

func TestSecretFileCreatedWithOwnerOnlyPermissions(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "secret")
	if _, err := Open(openTestDatabase(t), secretPath); err != nil {
		t.Fatalf("open keystore: %v", err)
	}

	info, err := os.Stat(secretPath)
	if err != nil {
		t.Fatalf("stat secret file: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Fatalf("expected 0600 secret file, got %v", mode)
	}
}

func TestDeleteRemovesValue(t *testing.T) {
	store, err := Open(openTestDatabase(t), filepath.Join(t.TempDir(), "secret"))
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}

	if err := store.Set("session_token", "value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete("session_token"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, err := store.Get("session_token"); err != nil || found {
		t.Fatalf("expected deleted key gone, err=%v found=%v", err, found)
	}
}
