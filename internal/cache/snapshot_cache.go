package cache

import (
	"fmt"
	"time"

	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	GroupHistoryTTL   = 5 * time.Minute
	UnreadSnapshotTTL = time.Minute
)

// SnapshotCache holds short-lived msgpack-encoded read models: group history
// pages and per-user unread snapshots. Direct history is never cached because
// fetching it mutates read state.
type SnapshotCache struct {
	redis *RedisCache
}

func NewSnapshotCache(redis *RedisCache) *SnapshotCache {
	return &SnapshotCache{redis: redis}
}

func groupHistoryKey(groupID uint, limit int) string {
	return fmt.Sprintf("ghist:%d:%d", groupID, limit)
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:%d", userID)
}

// GetGroupHistory returns a cached history page, if present.
func (sc *SnapshotCache) GetGroupHistory(groupID uint, limit int) ([]models.MessagePayload, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(groupHistoryKey(groupID, limit))
	if err != nil || data == nil {
		return nil, false
	}
	var payloads []models.MessagePayload
	if err := msgpack.Unmarshal(data, &payloads); err != nil {
		return nil, false
	}
	return payloads, true
}

// SetGroupHistory caches a history page.
func (sc *SnapshotCache) SetGroupHistory(groupID uint, limit int, payloads []models.MessagePayload) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(payloads)
	if err != nil {
		return err
	}
	return sc.redis.Set(groupHistoryKey(groupID, limit), data, GroupHistoryTTL)
}

// InvalidateGroupHistory drops the common page sizes for a group. Uncommon
// sizes simply age out on TTL.
func (sc *SnapshotCache) InvalidateGroupHistory(groupID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(
		groupHistoryKey(groupID, 50),
		groupHistoryKey(groupID, 100),
		groupHistoryKey(groupID, 200),
	)
}

// GetUnreadSnapshot returns a cached unread map, if present.
func (sc *SnapshotCache) GetUnreadSnapshot(userID uint) (map[string]int64, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(unreadKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	var counts map[string]int64
	if err := msgpack.Unmarshal(data, &counts); err != nil {
		return nil, false
	}
	return counts, true
}

// SetUnreadSnapshot caches a freshly computed unread map.
func (sc *SnapshotCache) SetUnreadSnapshot(userID uint, counts map[string]int64) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(counts)
	if err != nil {
		return err
	}
	return sc.redis.Set(unreadKey(userID), data, UnreadSnapshotTTL)
}

// InvalidateUnreadSnapshot drops a user's cached unread map.
func (sc *SnapshotCache) InvalidateUnreadSnapshot(userID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(unreadKey(userID))
}
