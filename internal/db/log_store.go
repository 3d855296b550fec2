package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/selene/internal/models"
	"gorm.io/gorm"
)

// LogStore owns the daily_logs table. Every mutation runs in one
// transaction and maintains the per-record change tracking (sync_status,
// changed_fields, revision) transparently for callers.
type LogStore struct {
	database *gorm.DB
	feed     *LogFeed
}

func NewLogStore(database *gorm.DB) *LogStore {
	return &LogStore{
		database: database,
		feed:     NewLogFeed(),
	}
}

// Subscribe streams record snapshots for one date, or for every date when
// date is empty. Deletions arrive as a snapshot in deleted status.
func (store *LogStore) Subscribe(date string) (<-chan models.DailyLog, func()) {
	return store.feed.Subscribe(date)
}

func (store *LogStore) Get(date string) (models.DailyLog, bool, error) {
	entry := models.DailyLog{}
	result := store.database.
		Where("date = ? AND sync_status <> ?", date, models.SyncStatusDeleted).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyLog{}, false, fmt.Errorf("load daily log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return entry, true, nil
}

func (store *LogStore) GetAll() ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	if err := store.database.
		Where("sync_status <> ?", models.SyncStatusDeleted).
		Order("date ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	return logs, nil
}

func (store *LogStore) Create(date string, fields LogFields) (models.DailyLog, error) {
	entry := models.DailyLog{}
	err := store.database.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.DailyLog{}).
			Where("date = ? AND sync_status <> ?", date, models.SyncStatusDeleted).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing daily log: %w", err)
		}
		if existing > 0 {
			return ErrLogExists
		}

		now := nowMilliseconds()
		entry = models.DailyLog{
			ID:         uuid.NewString(),
			Date:       date,
			CreatedAt:  now,
			UpdatedAt:  now,
			SyncStatus: models.SyncStatusCreated,
			Revision:   1,
		}
		changed := applyFields(&entry, fields)
		entry.ChangedFields = mergeChangedColumns([]string{models.ColumnDate}, changed)

		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create daily log: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.DailyLog{}, err
	}

	store.feed.publish(entry)
	return entry, nil
}

func (store *LogStore) Update(id string, fields LogFields) (models.DailyLog, error) {
	entry := models.DailyLog{}
	mutated := false
	err := store.database.Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("id = ? AND sync_status <> ?", id, models.SyncStatusDeleted).
			Limit(1).
			Find(&entry)
		if result.Error != nil {
			return fmt.Errorf("load daily log: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrLogNotFound
		}

		changed := applyFields(&entry, fields)
		if len(changed) == 0 {
			return nil
		}

		entry.UpdatedAt = nextTimestamp(entry.UpdatedAt)
		entry.Revision++
		if entry.SyncStatus == models.SyncStatusSynced {
			entry.SyncStatus = models.SyncStatusUpdated
		}
		entry.ChangedFields = mergeChangedColumns(entry.ChangedFields, changed)
		mutated = true

		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("update daily log: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.DailyLog{}, err
	}

	if mutated {
		store.feed.publish(entry)
	}
	return entry, nil
}

// Delete marks a record deleted until the remote side acknowledges it. A
// record the remote side has never seen is removed outright.
func (store *LogStore) Delete(id string) error {
	entry := models.DailyLog{}
	err := store.database.Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("id = ? AND sync_status <> ?", id, models.SyncStatusDeleted).
			Limit(1).
			Find(&entry)
		if result.Error != nil {
			return fmt.Errorf("load daily log: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrLogNotFound
		}

		if entry.SyncStatus == models.SyncStatusCreated {
			if err := tx.Delete(&models.DailyLog{}, "id = ?", entry.ID).Error; err != nil {
				return fmt.Errorf("remove unsynced daily log: %w", err)
			}
			entry.SyncStatus = models.SyncStatusDeleted
			return nil
		}

		entry.SyncStatus = models.SyncStatusDeleted
		entry.UpdatedAt = nextTimestamp(entry.UpdatedAt)
		entry.Revision++
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("mark daily log deleted: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	store.feed.publish(entry)
	return nil
}

// ResetAll wipes the records together with the watermark and dirty
// metadata in one transaction. Used on logout and account switch.
func (store *LogStore) ResetAll() error {
	return store.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM daily_logs`).Error; err != nil {
			return fmt.Errorf("wipe daily logs: %w", err)
		}
		if err := tx.Exec(`DELETE FROM sync_state`).Error; err != nil {
			return fmt.Errorf("wipe sync state: %w", err)
		}
		return nil
	})
}

func nowMilliseconds() int64 {
	return time.Now().UnixMilli()
}

// nextTimestamp keeps updated_at strictly increasing even when the clock
// has not moved between two mutations of the same record.
func nextTimestamp(previous int64) int64 {
	now := nowMilliseconds()
	if now <= previous {
		return previous + 1
	}
	return now
}
