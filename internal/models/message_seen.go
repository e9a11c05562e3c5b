package models

import (
	"time"
)

// MessageSeen is the per-user read marker for group messages. Existence of a
// row means "seen". Rows cascade with their message.
type MessageSeen struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	SeenAt    time.Time `gorm:"autoCreateTime" json:"seen_at"`

	Message Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}
