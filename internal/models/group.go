package models

import (
	"time"
)

type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name      string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatorID uint   `gorm:"not null" json:"creator_id"`

	Members []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

type GroupMember struct {
	GroupID  uint      `gorm:"primaryKey" json:"group_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// GroupResponse is the list shape for a user's groups, including the derived
// unread count and last activity hint used for conversation ordering.
type GroupResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	CreatorID    uint   `json:"creator_id"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity,omitempty"`
	UnreadCount  int64  `json:"unread_count"`
}
