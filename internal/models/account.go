package models

// Account is a server-side user of the change-log API.
type Account struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    int64  `gorm:"not null;autoCreateTime:false"`
}
