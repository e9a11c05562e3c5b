package service

import (
	"log"
	"time"

	"github.com/relaychat/relaychat-backend/internal/cache"
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/repository"
)

// PresenceService keeps the durable presence rows and the Redis fast path in
// step. Transitions fire only on the first connection up and the last
// connection down; the connection registry owns that refcounting.
type PresenceService struct {
	statusRepo repository.OnlineStatusRepositoryInterface
	presence   *cache.PresenceCache
}

func NewPresenceService(statusRepo repository.OnlineStatusRepositoryInterface, presence *cache.PresenceCache) *PresenceService {
	return &PresenceService{statusRepo: statusRepo, presence: presence}
}

// SetOnline marks a user online. The cache write is best-effort; the
// database row is authoritative for last-seen.
func (s *PresenceService) SetOnline(userID uint) error {
	if err := s.statusRepo.SetOnline(userID, true); err != nil {
		return persistence(err)
	}
	if err := s.presence.SetOnline(userID); err != nil {
		log.Printf("failed to cache online state for user %d: %v", userID, err)
	}
	return nil
}

// SetOffline marks a user offline and stamps last-seen.
func (s *PresenceService) SetOffline(userID uint) error {
	if err := s.statusRepo.SetOnline(userID, false); err != nil {
		return persistence(err)
	}
	if err := s.presence.SetOffline(userID); err != nil {
		log.Printf("failed to clear cached online state for user %d: %v", userID, err)
	}
	return nil
}

// Refresh extends the cached online TTL, called from the pong handler.
func (s *PresenceService) Refresh(userID uint) {
	if err := s.presence.Refresh(userID); err != nil {
		log.Printf("failed to refresh cached online state for user %d: %v", userID, err)
	}
}

// Status derives one user's presence: "online" while connected, "away"
// within five minutes of last seen, "offline" after. The cache answers the
// online case without touching the database.
func (s *PresenceService) Status(userID uint) (string, error) {
	if s.presence.IsOnline(userID) {
		return "online", nil
	}
	row, err := s.statusRepo.Get(userID)
	if err != nil {
		return "", persistence(err)
	}
	if row == nil {
		return "offline", nil
	}
	return row.PresenceState(time.Now().UTC()), nil
}

// OnlineUsers lists users currently online or within the away window.
func (s *PresenceService) OnlineUsers() ([]models.OnlineStatus, error) {
	rows, err := s.statusRepo.ListOnline()
	if err != nil {
		return nil, persistence(err)
	}
	return rows, nil
}
