package models

const (
	SyncStatusSynced  = "synced"
	SyncStatusCreated = "created"
	SyncStatusUpdated = "updated"
	SyncStatusDeleted = "deleted"
)

const (
	FlowSpotting = "Spotting"
	FlowLight    = "Light"
	FlowMedium   = "Medium"
	FlowHeavy    = "Heavy"
)

// Exercise is stored as one serialized blob.
type Exercise struct {
	Types     []string `json:"types"`
	StepCount *int     `json:"stepCount,omitempty"`
}

// DailyLog holds one day of tracked data plus the sync metadata the
// change tracker maintains. Records in deleted status stay in the table
// until the remote side acknowledges the deletion.
type DailyLog struct {
	ID            string  `gorm:"primaryKey"`
	Date          string  `gorm:"not null;index:idx_daily_logs_date"`
	BleedingFlow  *string
	BleedingColor *string
	Moods         []string  `gorm:"serializer:json"`
	Symptoms      []string  `gorm:"serializer:json"`
	Cravings      []string  `gorm:"serializer:json"`
	Exercise      *Exercise `gorm:"serializer:json"`
	WorkLoad      *string
	SleepHours    *float64
	SleepQuality  *string
	Weight        *float64
	BirthControl  bool  `gorm:"not null;default:false"`
	Smoke         bool  `gorm:"not null;default:false"`
	Alcohol       bool  `gorm:"not null;default:false"`
	// Millisecond timestamps owned by the store, not by gorm's
	// automatic time tracking.
	CreatedAt int64 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:false"`

	SyncStatus    string   `gorm:"not null;default:synced;index:idx_daily_logs_sync_status"`
	ChangedFields []string `gorm:"serializer:json"`
	Revision      uint64   `gorm:"not null;default:0"`
}

func (entry DailyLog) IsDirty() bool {
	return entry.SyncStatus != SyncStatusSynced
}
