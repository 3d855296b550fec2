package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/selene/internal/models"
)

const sessionTokenKey = "session_token"

var (
	ErrNoSession    = errors.New("no stored session")
	ErrInvalidToken = errors.New("invalid session token")
)

// TokenVault is the secure string store the session token persists in.
type TokenVault interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	Delete(key string) error
}

// Event notifies subscribers of sign-in/sign-out transitions; sign-in
// events carry the new session.
type Event struct {
	SignedIn bool
	Session  models.Session
}

// Store keeps the current session in memory, persists its token in the
// vault, and fans out state transitions. The sync engine only reads
// Current; the scheduler subscribes to trigger a sync on sign-in.
type Store struct {
	vault      TokenVault
	signingKey []byte

	mu          sync.Mutex
	current     *models.Session
	nextID      int
	subscribers map[int]chan Event
}

func NewStore(vault TokenVault, signingKey []byte) *Store {
	return &Store{
		vault:       vault,
		signingKey:  signingKey,
		subscribers: make(map[int]chan Event),
	}
}

// Load restores the session persisted by a previous process. A missing or
// expired token leaves the store signed out without error.
func (store *Store) Load() error {
	token, found, err := store.vault.Get(sessionTokenKey)
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}
	if !found {
		return nil
	}

	session, err := parseSessionToken(token, store.signingKey)
	if err != nil {
		// Stale or tampered token; drop it instead of failing startup.
		if deleteErr := store.vault.Delete(sessionTokenKey); deleteErr != nil {
			return fmt.Errorf("drop stale session token: %w", deleteErr)
		}
		return nil
	}

	store.mu.Lock()
	store.current = &session
	store.mu.Unlock()
	return nil
}

func (store *Store) SignIn(token string) (models.Session, error) {
	session, err := parseSessionToken(token, store.signingKey)
	if err != nil {
		return models.Session{}, err
	}
	if err := store.vault.Set(sessionTokenKey, token); err != nil {
		return models.Session{}, fmt.Errorf("persist session token: %w", err)
	}

	store.mu.Lock()
	store.current = &session
	store.mu.Unlock()

	store.notify(Event{SignedIn: true, Session: session})
	return session, nil
}

func (store *Store) SignOut() error {
	if err := store.vault.Delete(sessionTokenKey); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}

	store.mu.Lock()
	store.current = nil
	store.mu.Unlock()

	store.notify(Event{SignedIn: false})
	return nil
}

func (store *Store) Current() (models.Session, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.current == nil {
		return models.Session{}, false
	}
	return *store.current, true
}

// Subscribe returns a stream of sign-in/out events and a cancel function.
func (store *Store) Subscribe() (<-chan Event, func()) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id := store.nextID
	store.nextID++
	channel := make(chan Event, 4)
	store.subscribers[id] = channel

	cancel := func() {
		store.mu.Lock()
		defer store.mu.Unlock()
		if _, active := store.subscribers[id]; !active {
			return
		}
		delete(store.subscribers, id)
		close(channel)
	}
	return channel, cancel
}

func (store *Store) notify(event Event) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, channel := range store.subscribers {
		select {
		case channel <- event:
		default:
		}
	}
}

func parseSessionToken(token string, signingKey []byte) (models.Session, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return models.Session{}, ErrInvalidToken
	}

	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return models.Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	return models.Session{
		UserID: userID,
		Email:  email,
		Token:  token,
	}, nil
}
