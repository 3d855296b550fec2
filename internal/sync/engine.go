package sync

import (
	"context"
	"sync/atomic"

	"github.com/terraincognita07/selene/internal/db"
	"github.com/terraincognita07/selene/internal/models"
	"go.uber.org/zap"
)

type RecordStore interface {
	ApplyRemote(incoming []models.DailyLog, deletedIDs []string) (db.ApplyStats, error)
	PendingChanges() (db.PendingChanges, error)
	ClearPending(snapshot db.PendingSnapshot) error
}

type WatermarkStore interface {
	LastPulledAt() (int64, error)
	SetLastPulledAt(timestamp int64) error
}

type SessionSource interface {
	Current() (models.Session, bool)
}

type Stats struct {
	PulledCreated int
	PulledUpdated int
	PulledDeleted int
	PushedCreated int
	PushedUpdated int
	PushedDeleted int
}

// Engine runs one pull-then-push sync session at a time. The single-flight
// guard lives on the engine instance, checked-and-set atomically; a
// session that finds the flag set returns immediately without error, as
// does one without an authenticated session.
type Engine struct {
	records    RecordStore
	watermarks WatermarkStore
	client     ChangeClient
	sessions   SessionSource
	log        *zap.SugaredLogger
	syncing    atomic.Bool
}

func NewEngine(records RecordStore, watermarks WatermarkStore, client ChangeClient, sessions SessionSource, log *zap.SugaredLogger) *Engine {
	return &Engine{
		records:    records,
		watermarks: watermarks,
		client:     client,
		sessions:   sessions,
		log:        log,
	}
}

// Sync is idempotent and safe to call repeatedly. The watermark advances
// only after both the pull apply and the push succeed; a push failure
// leaves pulled changes applied (they are independently consistent) with
// dirty flags and watermark untouched.
func (engine *Engine) Sync(ctx context.Context) (Stats, error) {
	if !engine.syncing.CompareAndSwap(false, true) {
		engine.log.Debug("sync already in progress, skipping")
		return Stats{}, nil
	}
	defer engine.syncing.Store(false)

	session, signedIn := engine.sessions.Current()
	if !signedIn {
		engine.log.Debug("no authenticated session, skipping sync")
		return Stats{}, nil
	}

	engine.log.Infow("starting sync", "user", session.Email)

	since, err := engine.watermarks.LastPulledAt()
	if err != nil {
		return Stats{}, &SyncError{Phase: PhasePull, Err: err}
	}

	engine.log.Debugw("pulling changes", "since", since)
	pull, err := engine.client.Pull(ctx, since, session)
	if err != nil {
		return Stats{}, &SyncError{Phase: PhasePull, Err: err}
	}

	incoming, err := decodePulledRecords(pull.Changes.DailyLogs)
	if err != nil {
		return Stats{}, &SyncError{Phase: PhasePull, Err: err}
	}

	applied, err := engine.records.ApplyRemote(incoming, pull.Changes.DailyLogs.Deleted)
	if err != nil {
		return Stats{}, &SyncError{Phase: PhasePull, Err: err}
	}
	engine.log.Infow("pull applied",
		"created", applied.Created,
		"updated", applied.Updated,
		"deleted", applied.Deleted,
		"timestamp", pull.Timestamp,
	)

	stats := Stats{
		PulledCreated: applied.Created,
		PulledUpdated: applied.Updated,
		PulledDeleted: applied.Deleted,
	}

	pending, err := engine.records.PendingChanges()
	if err != nil {
		return stats, &SyncError{Phase: PhasePush, Err: err}
	}

	if pending.Empty() {
		engine.log.Debug("no local changes to push")
	} else {
		snapshot := pending.Snapshot()
		engine.log.Infow("pushing changes",
			"created", len(pending.Created),
			"updated", len(pending.Updated),
			"deleted", len(pending.Deleted),
		)

		if err := engine.client.Push(ctx, encodePendingChanges(pending), session); err != nil {
			return stats, &SyncError{Phase: PhasePush, Err: err}
		}
		if err := engine.records.ClearPending(snapshot); err != nil {
			return stats, &SyncError{Phase: PhasePush, Err: err}
		}

		stats.PushedCreated = len(pending.Created)
		stats.PushedUpdated = len(pending.Updated)
		stats.PushedDeleted = len(pending.Deleted)
	}

	if err := engine.watermarks.SetLastPulledAt(pull.Timestamp); err != nil {
		return stats, &SyncError{Phase: PhasePush, Err: err}
	}

	engine.log.Infow("sync completed",
		"pulled", stats.PulledCreated+stats.PulledUpdated+stats.PulledDeleted,
		"pushed", stats.PushedCreated+stats.PushedUpdated+stats.PushedDeleted,
	)
	return stats, nil
}

func decodePulledRecords(set ChangeSet) ([]models.DailyLog, error) {
	incoming := make([]models.DailyLog, 0, len(set.Created)+len(set.Updated))
	for _, bucket := range [][]RawRecord{set.Created, set.Updated} {
		for _, raw := range bucket {
			entry, err := FromRaw(raw)
			if err != nil {
				return nil, err
			}
			incoming = append(incoming, entry)
		}
	}
	return incoming, nil
}

func encodePendingChanges(pending db.PendingChanges) DocumentChanges {
	set := ChangeSet{
		Created: make([]RawRecord, 0, len(pending.Created)),
		Updated: make([]RawRecord, 0, len(pending.Updated)),
		Deleted: pending.DeletedIDs(),
	}
	for _, entry := range pending.Created {
		set.Created = append(set.Created, ToRaw(entry))
	}
	for _, entry := range pending.Updated {
		set.Updated = append(set.Updated, ToRaw(entry))
	}
	return DocumentChanges{DailyLogs: set}
}
