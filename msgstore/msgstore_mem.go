package msgstore

import (
	"context"
	"sort"
	"sync"
)

// MemMessageStore keeps messages in process memory, for tests and small deployments. Not bounded; production uses the gorm-backed store.
type MemMessageStore struct {
	mu       sync.RWMutex
	channels map[string][]StoredMessage
}

var _ MessageStore = (*MemMessageStore)(nil)

func NewMemMessageStore() *MemMessageStore {
	return &MemMessageStore{
		channels: make(map[string][]StoredMessage),
	}
}

func (s *MemMessageStore) Put(ctx context.Context, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[msg.ChannelID] = append(s.channels[msg.ChannelID], msg)
	return nil
}

func (s *MemMessageStore) GetRecentByChannelBeforeID(ctx context.Context, channelID, beforeID string, limit int) ([]StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.channels[channelID]
	out := make([]StoredMessage, 0, limit)
	for _, m := range msgs {
		if beforeID == "" || snowflakeLess(m.ID, beforeID) {
			out = append(out, m)
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool {
		return snowflakeLess(out[j].ID, out[i].ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// snowflake IDs compare numerically; shorter decimal strings are always smaller
func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
