package domain

import (
	"time"

	"gorm.io/gorm"
)

// UserRecord holds the credentials needed to post on behalf of a chat user
type UserRecord struct {
	AccessToken  string `json:"access_token"`
	InstanceHost string `json:"instance_host"`
}

// UserRecordEntity struct - Persistence entity for user records.
// A row with nil AccessToken is a logged out (tombstoned) user.
type UserRecordEntity struct {
	ChatUserID   string     `gorm:"type:varchar(128);primary_key;"`
	AccessToken  *string    `gorm:"type:text"`
	InstanceHost *string    `gorm:"type:varchar(255)"`
	CreatedAt    *time.Time `gorm:"type:timestamp"`
	UpdatedAt    *time.Time `gorm:"type:timestamp"`
}

// TableName func
func (e *UserRecordEntity) TableName() string {
	return "user_records"
}

// ToUserRecord returns the record or nil for a tombstone
func (e *UserRecordEntity) ToUserRecord() *UserRecord {
	if e.AccessToken == nil || e.InstanceHost == nil {
		return nil
	}
	return &UserRecord{
		AccessToken:  *e.AccessToken,
		InstanceHost: *e.InstanceHost,
	}
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) {
	if db == nil {
		panic("An error when connect database")
	}

	err := db.AutoMigrate(&UserRecordEntity{})
	if err != nil {
		panic(err)
	}
}
