package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type memoryVault struct {
	items map[string]string
}

func newMemoryVault() *memoryVault {
	return &memoryVault{items: map[string]string{}}
}

func (vault *memoryVault) Get(key string) (string, bool, error) {
	value, found := vault.items[key]
	return value, found, nil
}

func (vault *memoryVault) Set(key string, value string) error {
	vault.items[key] = value
	return nil
}

func (vault *memoryVault) Delete(key string) error {
	delete(vault.items, key)
	return nil
}

var testSigningKey = []byte("unit-test-signing-key")

func mintToken(t *testing.T, key []byte, userID string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func TestSignInStoresSessionAndPersistsToken(t *testing.T) {
	vault := newMemoryVault()
	store := NewStore(vault, testSigningKey)

	token := mintToken(t, testSigningKey, "user-1", time.Hour)
	session, err := store.SignIn(token)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if session.UserID != "user-1" || session.Email != "user-1@example.com" {
		t.Fatalf("unexpected session claims: %+v", session)
	}

	current, signedIn := store.Current()
	if !signedIn || current.Token != token {
		t.Fatalf("expected current session with token, got %+v signedIn=%v", current, signedIn)
	}
	if vault.items[sessionTokenKey] != token {
		t.Fatal("expected token persisted in vault")
	}
}

func TestSignInRejectsForeignSignature(t *testing.T) {
	store := NewStore(newMemoryVault(), testSigningKey)

	token := mintToken(t, []byte("some-other-key"), "user-1", time.Hour)
	if _, err := store.SignIn(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, signedIn := store.Current(); signedIn {
		t.Fatal("rejected token must not establish a session")
	}
}

func TestLoadRestoresSessionFromVault(t *testing.T) {
	vault := newMemoryVault()
	token := mintToken(t, testSigningKey, "user-1", time.Hour)

	first := NewStore(vault, testSigningKey)
	if _, err := first.SignIn(token); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	// A fresh store sharing the vault simulates a process restart.
	second := NewStore(vault, testSigningKey)
	if err := second.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	current, signedIn := second.Current()
	if !signedIn || current.UserID != "user-1" {
		t.Fatalf("expected restored session, got %+v signedIn=%v", current, signedIn)
	}
}

func TestLoadDropsExpiredTokenWithoutError(t *testing.T) {
	vault := newMemoryVault()
	expired := mintToken(t, testSigningKey, "user-1", -time.Hour)
	if err := vault.Set(sessionTokenKey, expired); err != nil {
		t.Fatalf("seed vault: %v", err)
	}

	store := NewStore(vault, testSigningKey)
	if err := store.Load(); err != nil {
		t.Fatalf("load with expired token: %v", err)
	}
	if _, signedIn := store.Current(); signedIn {
		t.Fatal("expired token must leave the store signed out")
	}
	if _, found := vault.items[sessionTokenKey]; found {
		t.Fatal("expected stale token removed from vault")
	}
}

func TestSignOutClearsSessionAndVault(t *testing.T) {
	vault := newMemoryVault()
	store := NewStore(vault, testSigningKey)
	if _, err := store.SignIn(mintToken(t, testSigningKey, "user-1", time.Hour)); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if err := store.SignOut(); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, signedIn := store.Current(); signedIn {
		t.Fatal("expected signed out store")
	}
	if _, found := vault.items[sessionTokenKey]; found {
		t.Fatal("expected token removed from vault")
	}
}

func TestSubscribeDeliversTransitions(t *testing.T) {
	store := NewStore(newMemoryVault(), testSigningKey)
	events, cancel := store.Subscribe()
	defer cancel()

	if _, err := store.SignIn(mintToken(t, testSigningKey, "user-1", time.Hour)); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	select {
	case event := <-events:
		if !event.SignedIn || event.Session.UserID != "user-1" {
			t.Fatalf("unexpected sign-in event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sign-in event")
	}

	if err := store.SignOut(); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	select {
	case event := <-events:
		if event.SignedIn {
			t.Fatalf("expected sign-out event, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sign-out event")
	}

	cancel()
	if _, open := <-events; open {
		t.Fatal("expected channel closed after cancel")
	}
}
