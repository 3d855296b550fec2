package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/sync"
	"gorm.io/gorm"
)

// PullChanges returns every change for the account newer than the
// client's watermark, bucketed created/updated/deleted, plus the server
// timestamp the client persists as its next watermark. Buckets are always
// present, a watermark of 0 means full initial sync.
func (handler *Handler) PullChanges(c *fiber.Ctx) error {
	input := sync.PullRequest{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	accountID := requestAccountID(c)
	timestamp := handler.now()

	rows := make([]models.RemoteDailyLog, 0)
	if err := handler.database.
		Where("user_id = ? AND last_modified > ?", accountID, input.LastPulledAt).
		Order("last_modified ASC, id ASC").
		Find(&rows).Error; err != nil {
		handler.log.Errorw("load change log", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	set := sync.ChangeSet{
		Created: make([]sync.RawRecord, 0),
		Updated: make([]sync.RawRecord, 0),
		Deleted: make([]string, 0),
	}
	for _, row := range rows {
		switch {
		case row.Deleted:
			set.Deleted = append(set.Deleted, row.ID)
		case row.ServerCreatedAt > input.LastPulledAt:
			set.Created = append(set.Created, sync.ToRaw(row.AsDailyLog()))
		default:
			set.Updated = append(set.Updated, sync.ToRaw(row.AsDailyLog()))
		}
	}

	handler.log.Debugw("pull served",
		"user", accountID,
		"since", input.LastPulledAt,
		"created", len(set.Created),
		"updated", len(set.Updated),
		"deleted", len(set.Deleted),
	)
	return c.JSON(sync.PullResponse{
		Changes:   sync.DocumentChanges{DailyLogs: set},
		Timestamp: timestamp,
	})
}

// PushChanges applies a client change set to the change log. Records
// resolve by last-writer-wins on updated_at so concurrent pushes from two
// devices converge; an all-empty change set is accepted as a no-op.
func (handler *Handler) PushChanges(c *fiber.Ctx) error {
	input := sync.PushRequest{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	set := input.Changes.DailyLogs
	if set.Empty() {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	accountID := requestAccountID(c)
	now := handler.now()

	err := handler.database.Transaction(func(tx *gorm.DB) error {
		for _, bucket := range [][]sync.RawRecord{set.Created, set.Updated} {
			for _, raw := range bucket {
				entry, err := sync.FromRaw(raw)
				if err != nil {
					return err
				}
				if err := upsertRemoteLog(tx, accountID, entry, now); err != nil {
					return err
				}
			}
		}
		for _, id := range set.Deleted {
			if err := tombstoneRemoteLog(tx, accountID, id, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		handler.log.Errorw("apply pushed changes", "user", accountID, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid change set"})
	}

	handler.log.Debugw("push applied",
		"user", accountID,
		"created", len(set.Created),
		"updated", len(set.Updated),
		"deleted", len(set.Deleted),
	)
	return c.JSON(fiber.Map{"status": "ok"})
}

func upsertRemoteLog(tx *gorm.DB, accountID string, entry models.DailyLog, now int64) error {
	existing := models.RemoteDailyLog{}
	result := tx.Where("user_id = ? AND id = ?", accountID, entry.ID).Limit(1).Find(&existing)
	if result.Error != nil {
		return fmt.Errorf("load remote record %s: %w", entry.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		record := remoteFromDailyLog(accountID, entry)
		record.ServerCreatedAt = now
		record.LastModified = now
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert remote record %s: %w", entry.ID, err)
		}
		return nil
	}

	if entry.UpdatedAt < existing.UpdatedAt {
		// A later writer already landed; drop the stale push.
		return nil
	}

	record := remoteFromDailyLog(accountID, entry)
	record.ServerCreatedAt = existing.ServerCreatedAt
	record.LastModified = now
	if err := tx.Save(&record).Error; err != nil {
		return fmt.Errorf("replace remote record %s: %w", entry.ID, err)
	}
	return nil
}

func tombstoneRemoteLog(tx *gorm.DB, accountID string, id string, now int64) error {
	result := tx.Model(&models.RemoteDailyLog{}).
		Where("user_id = ? AND id = ?", accountID, id).
		Updates(map[string]any{"deleted": true, "last_modified": now})
	if result.Error != nil {
		return fmt.Errorf("tombstone remote record %s: %w", id, result.Error)
	}
	return nil
}

func remoteFromDailyLog(accountID string, entry models.DailyLog) models.RemoteDailyLog {
	return models.RemoteDailyLog{
		ID:            entry.ID,
		UserID:        accountID,
		Date:          entry.Date,
		BleedingFlow:  entry.BleedingFlow,
		BleedingColor: entry.BleedingColor,
		Moods:         entry.Moods,
		Symptoms:      entry.Symptoms,
		Cravings:      entry.Cravings,
		Exercise:      entry.Exercise,
		WorkLoad:      entry.WorkLoad,
		SleepHours:    entry.SleepHours,
		SleepQuality:  entry.SleepQuality,
		Weight:        entry.Weight,
		BirthControl:  entry.BirthControl,
		Smoke:         entry.Smoke,
		Alcohol:       entry.Alcohol,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
