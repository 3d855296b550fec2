package db

import "gorm.io/gorm"

type Repositories struct {
	Logs      *LogStore
	SyncState *SyncStateStore
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Logs:      NewLogStore(database),
		SyncState: NewSyncStateStore(database),
	}
}
