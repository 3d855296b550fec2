package sync

import (
	"context"
	"path/filepath"
	stdsync "sync"
	"testing"

	"github.com/terraincognita07/selene/internal/db"
	"github.com/terraincognita07/selene/internal/models"
	"go.uber.org/zap"
)

func openTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "selene-sync-test.db"))
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

	return db.NewRepositories(database)
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type staticSessions struct {
	session *models.Session
}

func (sessions staticSessions) Current() (models.Session, bool) {
	if sessions.session == nil {
		return models.Session{}, false
	}
	return *sessions.session, true
}

func signedInSessions() staticSessions {
	return staticSessions{session: &models.Session{
		UserID: "user-1",
		Email:  "user@selene.local",
		Token:  "test-token",
	}}
}

// scriptedClient records every call and delegates to per-test functions;
// nil functions mean "succeed with an empty response".
type scriptedClient struct {
	mu       stdsync.Mutex
	pulls    []int64
	pushes   []DocumentChanges
	pullFunc func(call int, since int64) (PullResponse, error)
	pushFunc func(call int, changes DocumentChanges) error
}

func (client *scriptedClient) Pull(_ context.Context, since int64, _ models.Session) (PullResponse, error) {
	client.mu.Lock()
	call := len(client.pulls)
	client.pulls = append(client.pulls, since)
	pullFunc := client.pullFunc
	client.mu.Unlock()

	if pullFunc == nil {
		return emptyPull(since + 1), nil
	}
	return pullFunc(call, since)
}

func (client *scriptedClient) Push(_ context.Context, changes DocumentChanges, _ models.Session) error {
	client.mu.Lock()
	call := len(client.pushes)
	client.pushes = append(client.pushes, changes)
	pushFunc := client.pushFunc
	client.mu.Unlock()

	if pushFunc == nil {
		return nil
	}
	return pushFunc(call, changes)
}

func (client *scriptedClient) pullWatermarks() []int64 {
	client.mu.Lock()
	defer client.mu.Unlock()
	return append([]int64(nil), client.pulls...)
}

func (client *scriptedClient) pushedChanges() []DocumentChanges {
	client.mu.Lock()
	defer client.mu.Unlock()
	return append([]DocumentChanges(nil), client.pushes...)
}

func emptyPull(timestamp int64) PullResponse {
	return PullResponse{
		Changes: DocumentChanges{DailyLogs: ChangeSet{
			Created: make([]RawRecord, 0),
			Updated: make([]RawRecord, 0),
			Deleted: make([]string, 0),
		}},
		Timestamp: timestamp,
	}
}
