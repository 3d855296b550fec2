package db

import (
	"testing"

	"github.com/terraincognita07/selene/internal/models"
)

func TestApplyRemoteKeepsNewerDirtyLocalRecord(t *testing.T) {
	repositories := openTestStore(t)

	local, err := repositories.Logs.Create("2025-12-01", LogFields{Weight: floatPointer(60)})
	if err != nil {
		t.Fatalf("create local record: %v", err)
	}

	remote := models.DailyLog{
		ID:        local.ID,
		Date:      "2025-12-01",
		Weight:    floatPointer(99),
		CreatedAt: local.CreatedAt,
		UpdatedAt: local.UpdatedAt - 10,
	}
	stats, err := repositories.Logs.ApplyRemote([]models.DailyLog{remote}, nil)
	if err != nil {
		t.Fatalf("apply remote record: %v", err)
	}
	if stats.Updated != 0 {
		t.Fatalf("expected older remote record skipped, got %+v", stats)
	}

	kept, found, err := repositories.Logs.Get("2025-12-01")
	if err != nil || !found {
		t.Fatalf("load record: found=%v err=%v", found, err)
	}
	if kept.Weight == nil || *kept.Weight != 60 {
		t.Fatalf("expected local edit kept, got %v", kept.Weight)
	}
	if !kept.IsDirty() {
		t.Fatal("expected surviving local edit to stay dirty for the next push")
	}
}

func TestApplyRemoteTieGoesToRemote(t *testing.T) {
	repositories := openTestStore(t)

	local, err := repositories.Logs.Create("2025-12-01", LogFields{Weight: floatPointer(60)})
	if err != nil {
		t.Fatalf("create local record: %v", err)
	}

	remote := models.DailyLog{
		ID:        local.ID,
		Date:      "2025-12-01",
		Weight:    floatPointer(99),
		CreatedAt: local.CreatedAt,
		UpdatedAt: local.UpdatedAt,
	}
	if _, err := repositories.Logs.ApplyRemote([]models.DailyLog{remote}, nil); err != nil {
		t.Fatalf("apply remote record: %v", err)
	}

	applied, found, err := repositories.Logs.Get("2025-12-01")
	if err != nil || !found {
		t.Fatalf("load record: found=%v err=%v", found, err)
	}
	if applied.Weight == nil || *applied.Weight != 99 {
		t.Fatalf("expected remote version on tie, got %v", applied.Weight)
	}
	if applied.IsDirty() {
		t.Fatal("expected remote winner to land clean")
	}
}

func TestApplyRemoteDeletionOverridesDirtyLocalState(t *testing.T) {
	repositories := openTestStore(t)

	pulled := models.DailyLog{ID: "remote-1", Date: "2025-12-01", CreatedAt: 100, UpdatedAt: 100}
	if _, err := repositories.Logs.ApplyRemote([]models.DailyLog{pulled}, nil); err != nil {
		t.Fatalf("seed synced record: %v", err)
	}
	if _, err := repositories.Logs.Update("remote-1", LogFields{Smoke: boolPointer(true)}); err != nil {
		t.Fatalf("dirty the record: %v", err)
	}

	stats, err := repositories.Logs.ApplyRemote(nil, []string{"remote-1"})
	if err != nil {
		t.Fatalf("apply remote deletion: %v", err)
	}
	if stats.Deleted != 1 {
		t.Fatalf("expected one deletion applied, got %+v", stats)
	}

	if _, found, err := repositories.Logs.Get("2025-12-01"); err != nil || found {
		t.Fatalf("expected record gone, found=%v err=%v", found, err)
	}
	pending, err := repositories.Logs.PendingChanges()
	if err != nil {
		t.Fatalf("load pending changes: %v", err)
	}
	if !pending.Empty() {
		t.Fatalf("expected no pending changes after authoritative deletion, got %+v", pending)
	}
}

func TestApplyRemoteInsertsUnknownRecordsClean(t *testing.T) {
	repositories := openTestStore(t)

	stats, err := repositories.Logs.ApplyRemote([]models.DailyLog{
		{ID: "remote-1", Date: "2025-12-01", CreatedAt: 100, UpdatedAt: 100},
	}, []string{"never-seen"})
	if err != nil {
		t.Fatalf("apply remote changes: %v", err)
	}
	if stats.Created != 1 || stats.Deleted != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	entry, found, err := repositories.Logs.Get("2025-12-01")
	if err != nil || !found {
		t.Fatalf("load record: found=%v err=%v", found, err)
	}
	if entry.SyncStatus != models.SyncStatusSynced {
		t.Fatalf("expected pulled record synced, got %s", entry.SyncStatus)
	}
}
