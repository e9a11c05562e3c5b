package models

import (
	"time"
)

// AwayWindow is how long after last_seen a disconnected user still shows as
// away instead of offline.
const AwayWindow = 5 * time.Minute

// OnlineStatus is one row per user. "away" is derived, never stored.
type OnlineStatus struct {
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	IsOnline bool      `gorm:"default:false" json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// PresenceState derives online/away/offline from the stored row at the given
// instant.
func (s *OnlineStatus) PresenceState(now time.Time) string {
	if s.IsOnline {
		return "online"
	}
	if now.Sub(s.LastSeen) <= AwayWindow {
		return "away"
	}
	return "offline"
}
