package postgres

import (
	"context"
	"errors"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Compile-time check to ensure UserRecordRepository implements UserRecordStore interface
var _ output.UserRecordStore = (*UserRecordRepository)(nil)

// UserRecordRepository struct - Secondary/Driven adapter for PostgreSQL
type UserRecordRepository struct {
	dbGorm *gorm.DB
}

// NewUserRecordRepository func - Creates new PostgreSQL repository
func NewUserRecordRepository(dbGorm *gorm.DB) *UserRecordRepository {
	logrus.Info("Migrate database ...")
	domain.MigrateDatabase(dbGorm)
	return &UserRecordRepository{
		dbGorm: dbGorm,
	}
}

// GetUserRecord func - Loads the record of a chat user, nil if absent or logged out
func (p *UserRecordRepository) GetUserRecord(ctx context.Context, chatUserID string) (*domain.UserRecord, error) {
	var entity domain.UserRecordEntity
	err := p.dbGorm.WithContext(ctx).
		Where("chat_user_id = ?", chatUserID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return entity.ToUserRecord(), nil
}

// PutUserRecord func - Creates or overwrites the record of a chat user
func (p *UserRecordRepository) PutUserRecord(ctx context.Context, chatUserID string, record domain.UserRecord) error {
	entity := domain.UserRecordEntity{
		ChatUserID:   chatUserID,
		AccessToken:  &record.AccessToken,
		InstanceHost: &record.InstanceHost,
	}
	return p.upsert(ctx, &entity)
}

// DeleteUserRecord func - Tombstones the record of a chat user (key kept, fields NULL)
func (p *UserRecordRepository) DeleteUserRecord(ctx context.Context, chatUserID string) error {
	entity := domain.UserRecordEntity{
		ChatUserID: chatUserID,
	}
	return p.upsert(ctx, &entity)
}

// Ping func - Checks the database connection
func (p *UserRecordRepository) Ping(ctx context.Context) error {
	sqlDB, err := p.dbGorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *UserRecordRepository) upsert(ctx context.Context, entity *domain.UserRecordEntity) error {
	err := p.dbGorm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "instance_host", "updated_at"}),
		}).
		Create(entity).Error
	if err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}
