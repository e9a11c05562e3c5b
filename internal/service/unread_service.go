package service

import (
	"log"
	"strconv"

	"github.com/relaychat/relaychat-backend/internal/cache"
	"github.com/relaychat/relaychat-backend/internal/repository"
)

// GroupCountKey prefixes group ids in the combined unread map so they can
// never collide with bare peer-id keys.
func GroupCountKey(groupID uint) string {
	return "group:" + strconv.FormatUint(uint64(groupID), 10)
}

// UnreadService derives unread-count views from persisted state. Counts are
// always recomputed from messages and seen-markers; nothing here increments
// or decrements a stored counter, so a lost update can never leave a count
// permanently wrong.
type UnreadService struct {
	messageRepo repository.MessageRepositoryInterface
	snapshots   *cache.SnapshotCache
}

func NewUnreadService(messageRepo repository.MessageRepositoryInterface, snapshots *cache.SnapshotCache) *UnreadService {
	return &UnreadService{messageRepo: messageRepo, snapshots: snapshots}
}

// CombinedCounts returns the union of the direct and group unread mappings
// for one user: bare peer ids for direct conversations, "group:{id}" keys
// for groups. The key spaces are disjoint by construction; if they ever
// overlapped, the direct value would win.
func (s *UnreadService) CombinedCounts(userID uint) (map[string]int64, error) {
	groupCounts, err := s.messageRepo.GroupUnreadCounts(userID)
	if err != nil {
		return nil, persistence(err)
	}
	directCounts, err := s.messageRepo.DirectUnreadCounts(userID)
	if err != nil {
		return nil, persistence(err)
	}

	combined := make(map[string]int64, len(groupCounts)+len(directCounts))
	for groupID, count := range groupCounts {
		combined[GroupCountKey(groupID)] = count
	}
	for peerID, count := range directCounts {
		combined[strconv.FormatUint(uint64(peerID), 10)] = count
	}

	if err := s.snapshots.SetUnreadSnapshot(userID, combined); err != nil {
		log.Printf("failed to cache unread snapshot for user %d: %v", userID, err)
	}
	return combined, nil
}

// CachedCounts serves the read-only snapshot endpoint: cache first, falling
// back to a fresh computation on a miss.
func (s *UnreadService) CachedCounts(userID uint) (map[string]int64, error) {
	if counts, ok := s.snapshots.GetUnreadSnapshot(userID); ok {
		return counts, nil
	}
	return s.CombinedCounts(userID)
}

// Invalidate drops a user's cached snapshot after a state change.
func (s *UnreadService) Invalidate(userID uint) {
	if err := s.snapshots.InvalidateUnreadSnapshot(userID); err != nil {
		log.Printf("failed to invalidate unread snapshot for user %d: %v", userID, err)
	}
}

// DirectCount returns the unread count from one peer, for tests and the
// conversation list.
func (s *UnreadService) DirectCount(userID, peerID uint) (int64, error) {
	counts, err := s.messageRepo.DirectUnreadCounts(userID)
	if err != nil {
		return 0, persistence(err)
	}
	return counts[peerID], nil
}

// GroupCount returns the unread count for one group.
func (s *UnreadService) GroupCount(userID, groupID uint) (int64, error) {
	counts, err := s.messageRepo.GroupUnreadCounts(userID)
	if err != nil {
		return 0, persistence(err)
	}
	return counts[groupID], nil
}
