package db

import (
	"fmt"

	"github.com/terraincognita07/selene/internal/models"
	"gorm.io/gorm"
)

// PendingChanges partitions the dirty records by status for the push
// phase. Deleted holds full records so the snapshot can carry revisions.
type PendingChanges struct {
	Created []models.DailyLog
	Updated []models.DailyLog
	Deleted []models.DailyLog
}

func (changes PendingChanges) Empty() bool {
	return len(changes.Created) == 0 && len(changes.Updated) == 0 && len(changes.Deleted) == 0
}

func (changes PendingChanges) DeletedIDs() []string {
	ids := make([]string, 0, len(changes.Deleted))
	for _, entry := range changes.Deleted {
		ids = append(ids, entry.ID)
	}
	return ids
}

// PendingSnapshot pins the revision of every record included in a push.
// Records mutated while the push is in flight get a new revision and are
// left dirty when the snapshot is cleared.
type PendingSnapshot map[string]uint64

func (changes PendingChanges) Snapshot() PendingSnapshot {
	snapshot := make(PendingSnapshot, len(changes.Created)+len(changes.Updated)+len(changes.Deleted))
	for _, bucket := range [][]models.DailyLog{changes.Created, changes.Updated, changes.Deleted} {
		for _, entry := range bucket {
			snapshot[entry.ID] = entry.Revision
		}
	}
	return snapshot
}

func (store *LogStore) PendingChanges() (PendingChanges, error) {
	rows := make([]models.DailyLog, 0)
	if err := store.database.
		Where("sync_status <> ?", models.SyncStatusSynced).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return PendingChanges{}, fmt.Errorf("load pending changes: %w", err)
	}

	changes := PendingChanges{
		Created: make([]models.DailyLog, 0),
		Updated: make([]models.DailyLog, 0),
		Deleted: make([]models.DailyLog, 0),
	}
	for _, row := range rows {
		switch row.SyncStatus {
		case models.SyncStatusCreated:
			changes.Created = append(changes.Created, row)
		case models.SyncStatusUpdated:
			changes.Updated = append(changes.Updated, row)
		case models.SyncStatusDeleted:
			changes.Deleted = append(changes.Deleted, row)
		}
	}
	return changes, nil
}

// ClearPending marks the snapshotted records clean after a remote
// acknowledgement. Only rows whose revision still matches the snapshot
// are touched; acknowledged deletions are removed physically.
func (store *LogStore) ClearPending(snapshot PendingSnapshot) error {
	if len(snapshot) == 0 {
		return nil
	}

	return store.database.Transaction(func(tx *gorm.DB) error {
		rows := make([]models.DailyLog, 0)
		if err := tx.
			Where("sync_status <> ?", models.SyncStatusSynced).
			Find(&rows).Error; err != nil {
			return fmt.Errorf("load dirty records: %w", err)
		}

		for _, row := range rows {
			revision, included := snapshot[row.ID]
			if !included || revision != row.Revision {
				continue
			}

			if row.SyncStatus == models.SyncStatusDeleted {
				if err := tx.Delete(&models.DailyLog{}, "id = ?", row.ID).Error; err != nil {
					return fmt.Errorf("remove acknowledged deletion: %w", err)
				}
				continue
			}

			row.SyncStatus = models.SyncStatusSynced
			row.ChangedFields = nil
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("mark record synced: %w", err)
			}
		}
		return nil
	})
}
