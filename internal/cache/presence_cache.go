package cache

import (
	"fmt"
	"strconv"
	"time"
)

// PresenceTTL bounds how long a user stays "online" in the cache without a
// refresh; slightly above the websocket ping interval so healthy connections
// never expire.
const PresenceTTL = 90 * time.Second

// PresenceCache is the fast path for presence lookups: a Redis set of online
// user ids plus per-user keys with a TTL so crashed servers cannot leave
// users online forever. The database row remains the durable source for
// last-seen timestamps.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

const presenceSetKey = "presence:online"

// SetOnline marks a user online in the cache.
func (pc *PresenceCache) SetOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd(presenceSetKey, userID); err != nil {
		return err
	}
	return pc.redis.Set(presenceKey(userID), []byte("1"), PresenceTTL)
}

// SetOffline removes a user from the cache.
func (pc *PresenceCache) SetOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove(presenceSetKey, userID); err != nil {
		return err
	}
	return pc.redis.Delete(presenceKey(userID))
}

// Refresh extends the online TTL, called from the pong handler.
func (pc *PresenceCache) Refresh(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Set(presenceKey(userID), []byte("1"), PresenceTTL)
}

// IsOnline reports whether the cache considers a user online.
func (pc *PresenceCache) IsOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(presenceKey(userID))
}

// OnlineIDs returns the cached online user ids.
func (pc *PresenceCache) OnlineIDs() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers(presenceSetKey)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseUint(m, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// OnlineCount returns the size of the online set.
func (pc *PresenceCache) OnlineCount() (int64, error) {
	if pc == nil || pc.redis == nil {
		return 0, nil
	}
	return pc.redis.SetCard(presenceSetKey)
}
