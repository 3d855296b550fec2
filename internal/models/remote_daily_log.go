package models

// RemoteDailyLog is the server-side change-log row behind the pull/push
// endpoints. ServerCreatedAt and LastModified are server clock values and
// drive the watermark buckets; Deleted rows are tombstones kept so late
// pullers learn about removals.
type RemoteDailyLog struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"not null;index:idx_remote_daily_logs_user_modified;index:idx_remote_daily_logs_user_date"`
	Date          string `gorm:"not null;index:idx_remote_daily_logs_user_date"`
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
	CreatedAt     int64 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     int64 `gorm:"not null;autoUpdateTime:false"`

	ServerCreatedAt int64 `gorm:"not null"`
	LastModified    int64 `gorm:"not null;index:idx_remote_daily_logs_user_modified"`
	Deleted         bool  `gorm:"not null;default:false"`
}

func (log RemoteDailyLog) AsDailyLog() DailyLog {
	return DailyLog{
		ID:            log.ID,
		Date:          log.Date,
		BleedingFlow:  log.BleedingFlow,
		BleedingColor: log.BleedingColor,
		Moods:         log.Moods,
		Symptoms:      log.Symptoms,
		Cravings:      log.Cravings,
		Exercise:      log.Exercise,
		WorkLoad:      log.WorkLoad,
		SleepHours:    log.SleepHours,
		SleepQuality:  log.SleepQuality,
		Weight:        log.Weight,
		BirthControl:  log.BirthControl,
		Smoke:         log.Smoke,
		Alcohol:       log.Alcohol,
		CreatedAt:     log.CreatedAt,
		UpdatedAt:     log.UpdatedAt,
	}
}
