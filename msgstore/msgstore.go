// Package msgstore persists recent messages so the action layer can run bulk operations (eg, purge the last N messages in a channel) against the same identifiers the engine evaluates.
package msgstore

import (
	"context"
	"time"
)

type StoredMessage struct {
	// Platform message ID. IDs are snowflakes: lexicographic order on equal-length IDs follows creation order.
	ID        string `gorm:"primarykey"`
	GuildID   string `gorm:"index"`
	ChannelID string `gorm:"index:idx_channel_id"`
	AuthorID  string `gorm:"index"`
	Content   string
	CreatedAt time.Time
}

type MessageStore interface {
	Put(ctx context.Context, msg StoredMessage) error
	// GetRecentByChannelBeforeID returns up to limit messages from the channel with IDs strictly below beforeID, newest first. An empty beforeID means "from the latest".
	GetRecentByChannelBeforeID(ctx context.Context, channelID, beforeID string, limit int) ([]StoredMessage, error)
}
