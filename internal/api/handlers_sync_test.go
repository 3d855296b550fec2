package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/sync"
)

func pushRecord(t *testing.T, app *fiber.App, token string, entry models.DailyLog) {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/sync/push", token, sync.PushRequest{
		Changes: sync.DocumentChanges{DailyLogs: sync.ChangeSet{
			Created: []sync.RawRecord{sync.ToRaw(entry)},
			Updated: make([]sync.RawRecord, 0),
			Deleted: make([]string, 0),
		}},
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("push: status %d", response.StatusCode)
	}
}

func pullSince(t *testing.T, app *fiber.App, token string, since int64) sync.PullResponse {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/sync/pull", token, sync.PullRequest{LastPulledAt: since})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("pull: status %d", response.StatusCode)
	}
	return decodeBody[sync.PullResponse](t, response)
}

func testEntry(id string, date string, updatedAt int64) models.DailyLog {
	moods := []string{"Happy"}
	return models.DailyLog{
		ID:        id,
		Date:      date,
		Moods:     moods,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestPushedRecordComesBackInCreatedBucket(t *testing.T) {
	app, _ := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	pushRecord(t, app, session.Token, testEntry("log-1", "2025-12-01", 1000))

	pulled := pullSince(t, app, session.Token, 0)
	logs := pulled.Changes.DailyLogs
	if len(logs.Created) != 1 || len(logs.Updated) != 0 || len(logs.Deleted) != 0 {
		t.Fatalf("unexpected buckets: %+v", logs)
	}
	if logs.Created[0][models.ColumnID] != "log-1" {
		t.Fatalf("unexpected record: %v", logs.Created[0])
	}
	if pulled.Timestamp <= 0 {
		t.Fatalf("expected a server timestamp, got %d", pulled.Timestamp)
	}
}

func TestPullAfterWatermarkIsEmpty(t *testing.T) {
	app, _ := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	pushRecord(t, app, session.Token, testEntry("log-1", "2025-12-01", 1000))
	first := pullSince(t, app, session.Token, 0)

	second := pullSince(t, app, session.Token, first.Timestamp)
	logs := second.Changes.DailyLogs
	if len(logs.Created)+len(logs.Updated)+len(logs.Deleted) != 0 {
		t.Fatalf("expected empty pull past the watermark, got %+v", logs)
	}
	if logs.Created == nil || logs.Updated == nil || logs.Deleted == nil {
		t.Fatal("buckets must always be present")
	}
}

func TestRecordChangedAfterWatermarkLandsInUpdatedBucket(t *testing.T) {
	app, handler := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	handler.now = func() int64 { return 1000 }
	pushRecord(t, app, session.Token, testEntry("log-1", "2025-12-01", 1000))

	handler.now = func() int64 { return 2000 }
	pushRecord(t, app, session.Token, testEntry("log-1", "2025-12-01", 1500))

	pulled := pullSince(t, app, session.Token, 1000)
	logs := pulled.Changes.DailyLogs
	if len(logs.Created) != 0 || len(logs.Updated) != 1 {
		t.Fatalf("expected the record in the updated bucket, got %+v", logs)
	}
}

func TestStalePushIsIgnored(t *testing.T) {
	app, _ := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	fresh := testEntry("log-1", "2025-12-01", 2000)
	color := "Bright Red"
	fresh.BleedingColor = &color
	pushRecord(t, app, session.Token, fresh)

	// A second device pushes an older version of the same record.
	pushRecord(t, app, session.Token, testEntry("log-1", "2025-12-01", 1000))

	pulled := pullSince(t, app, session.Token, 0)
	record := pulled.Changes.DailyLogs.Created[0]
	if record[models.ColumnBleedingColor] != "Bright Red" {
		t.Fatalf("stale push must not overwrite the newer record: %v", record)
	}
}

func TestDeletePushTombstonesRecord(t *testing.T) {
	app, _ := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	pushRecord(t, app, session.Token, testEntry("log-1", "2025-12-01", 1000))

	response := performJSON(t, app, http.MethodPost, "/api/sync/push", session.Token, sync.PushRequest{
		Changes: sync.DocumentChanges{DailyLogs: sync.ChangeSet{Deleted: []string{"log-1"}}},
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("push deletion: status %d", response.StatusCode)
	}

	pulled := pullSince(t, app, session.Token, 0)
	logs := pulled.Changes.DailyLogs
	if len(logs.Created) != 0 || len(logs.Updated) != 0 {
		t.Fatalf("deleted record must not appear as data: %+v", logs)
	}
	if len(logs.Deleted) != 1 || logs.Deleted[0] != "log-1" {
		t.Fatalf("expected deletion id, got %v", logs.Deleted)
	}
}

func TestEmptyPushIsANoOp(t *testing.T) {
	app, _ := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	response := performJSON(t, app, http.MethodPost, "/api/sync/push", session.Token, sync.PushRequest{})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("empty push: status %d", response.StatusCode)
	}
}

func TestPushRejectsRecordWithoutIdentity(t *testing.T) {
	app, _ := newTestServer(t)
	session := registerAccount(t, app, "ada@example.com")

	response := performJSON(t, app, http.MethodPost, "/api/sync/push", session.Token, sync.PushRequest{
		Changes: sync.DocumentChanges{DailyLogs: sync.ChangeSet{
			Created: []sync.RawRecord{{models.ColumnDate: "2025-12-01"}},
		}},
	})
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for record without id, got %d", response.StatusCode)
	}
}

func TestAccountsAreIsolated(t *testing.T) {
	app, _ := newTestServer(t)
	ada := registerAccount(t, app, "ada@example.com")
	grace := registerAccount(t, app, "grace@example.com")

	pushRecord(t, app, ada.Token, testEntry("log-1", "2025-12-01", 1000))

	pulled := pullSince(t, app, grace.Token, 0)
	logs := pulled.Changes.DailyLogs
	if len(logs.Created)+len(logs.Updated)+len(logs.Deleted) != 0 {
		t.Fatalf("one account must never see another's records: %+v", logs)
	}
}
