package db

import (
	"fmt"

	"github.com/terraincognita07/selene/internal/models"
	"gorm.io/gorm"
)

type ApplyStats struct {
	Created int
	Updated int
	Deleted int
}

// ApplyRemote writes one pull's worth of remote changes in a single
// transaction. Conflicts with dirty local records resolve by whole-record
// last-writer-wins on updated_at; the remote side wins ties. Remote
// deletions are authoritative regardless of local dirty state.
func (store *LogStore) ApplyRemote(incoming []models.DailyLog, deletedIDs []string) (ApplyStats, error) {
	stats := ApplyStats{}
	events := make([]models.DailyLog, 0, len(incoming)+len(deletedIDs))

	err := store.database.Transaction(func(tx *gorm.DB) error {
		for _, remote := range incoming {
			local := models.DailyLog{}
			result := tx.Where("id = ?", remote.ID).Limit(1).Find(&local)
			if result.Error != nil {
				return fmt.Errorf("load local record %s: %w", remote.ID, result.Error)
			}

			if result.RowsAffected == 0 {
				record := remote
				record.SyncStatus = models.SyncStatusSynced
				record.ChangedFields = nil
				record.Revision = 0
				if err := tx.Create(&record).Error; err != nil {
					return fmt.Errorf("insert pulled record %s: %w", remote.ID, err)
				}
				stats.Created++
				events = append(events, record)
				continue
			}

			if local.IsDirty() && local.UpdatedAt > remote.UpdatedAt {
				// Local edit is newer; keep it dirty for the next push.
				continue
			}

			record := remote
			record.SyncStatus = models.SyncStatusSynced
			record.ChangedFields = nil
			record.Revision = local.Revision
			if err := tx.Save(&record).Error; err != nil {
				return fmt.Errorf("replace local record %s: %w", remote.ID, err)
			}
			stats.Updated++
			events = append(events, record)
		}

		for _, id := range deletedIDs {
			local := models.DailyLog{}
			result := tx.Where("id = ?", id).Limit(1).Find(&local)
			if result.Error != nil {
				return fmt.Errorf("load local record %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				continue
			}
			if err := tx.Delete(&models.DailyLog{}, "id = ?", id).Error; err != nil {
				return fmt.Errorf("apply remote deletion %s: %w", id, err)
			}
			stats.Deleted++
			local.SyncStatus = models.SyncStatusDeleted
			events = append(events, local)
		}

		return nil
	})
	if err != nil {
		return ApplyStats{}, err
	}

	for _, event := range events {
		store.feed.publish(event)
	}
	return stats, nil
}
