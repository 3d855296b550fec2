package db

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lastPulledAtKey = "last_pulled_at"

type syncStateRow struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"not null"`
}

func (syncStateRow) TableName() string {
	return "sync_state"
}

// SyncStateStore persists the watermark. It shares the database with the
// records so ResetAll can wipe both atomically.
type SyncStateStore struct {
	database *gorm.DB
}

func NewSyncStateStore(database *gorm.DB) *SyncStateStore {
	return &SyncStateStore{database: database}
}

// LastPulledAt returns 0 when the store has never synced.
func (store *SyncStateStore) LastPulledAt() (int64, error) {
	row := syncStateRow{}
	result := store.database.Where("key = ?", lastPulledAtKey).Limit(1).Find(&row)
	if result.Error != nil {
		return 0, fmt.Errorf("load watermark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}

	timestamp, err := strconv.ParseInt(row.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse watermark %q: %w", row.Value, err)
	}
	return timestamp, nil
}

func (store *SyncStateStore) SetLastPulledAt(timestamp int64) error {
	row := syncStateRow{
		Key:   lastPulledAtKey,
		Value: strconv.FormatInt(timestamp, 10),
	}
	err := store.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("persist watermark: %w", err)
	}
	return nil
}
