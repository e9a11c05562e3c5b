package models

import (
	"time"
)

type PinTargetType string

const (
	PinTargetUser  PinTargetType = "user"
	PinTargetGroup PinTargetType = "group"
)

// ChatPin is a per-user conversation-list ordering hint, independent of the
// per-message Pinned flag.
type ChatPin struct {
	UserID     uint          `gorm:"primaryKey" json:"user_id"`
	TargetType PinTargetType `gorm:"primaryKey;type:varchar(10)" json:"target_type"`
	TargetID   string        `gorm:"primaryKey;size:64" json:"target_id"`
	Pinned     bool          `gorm:"not null;default:true" json:"pinned"`
	PinnedAt   time.Time     `json:"pinned_at"`
}
