package msgstore

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GormMessageStore persists messages in a SQL database via gorm. The default deployment uses sqlite.
type GormMessageStore struct {
	DB *gorm.DB
}

var _ MessageStore = (*GormMessageStore)(nil)

func NewSqliteMessageStore(path string) (*GormMessageStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening message database: %w", err)
	}
	if err := db.AutoMigrate(&StoredMessage{}); err != nil {
		return nil, fmt.Errorf("migrating message schema: %w", err)
	}
	return &GormMessageStore{DB: db}, nil
}

func (s *GormMessageStore) Put(ctx context.Context, msg StoredMessage) error {
	return s.DB.WithContext(ctx).Create(&msg).Error
}

func (s *GormMessageStore) GetRecentByChannelBeforeID(ctx context.Context, channelID, beforeID string, limit int) ([]StoredMessage, error) {
	var out []StoredMessage
	q := s.DB.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("length(id) DESC, id DESC").
		Limit(limit)
	if beforeID != "" {
		q = q.Where("length(id) < length(?) OR (length(id) = length(?) AND id < ?)", beforeID, beforeID, beforeID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
