package models

import (
	"time"
)

type MessageKind string

const (
	TextMessage    MessageKind = "text"
	ImageMessage   MessageKind = "image"
	FileMessage    MessageKind = "file"
	ReplyMessage   MessageKind = "reply"
	ForwardMessage MessageKind = "forward"
)

// Message is a direct or group chat message. Exactly one of ReceiverID and
// GroupID is set. Rows are immutable once created except IsRead and Pinned.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SenderID   uint     `gorm:"not null;index" json:"sender_id"`
	Sender     User     `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID *uint    `gorm:"index" json:"receiver_id"` // null for group messages
	GroupID    *uint    `gorm:"index" json:"group_id"`    // null for direct messages

	Content string      `gorm:"type:text;not null" json:"content"`
	Kind    MessageKind `gorm:"type:varchar(20);not null;default:'text'" json:"type"`

	ParentMessageID *uint    `gorm:"index" json:"parent_message_id"`
	Parent          *Message `gorm:"foreignKey:ParentMessageID" json:"-"`

	MediaURL  *string `gorm:"size:255" json:"media_url"`
	MediaType *string `gorm:"size:50" json:"media_type"`
	FileSize  *int64  `json:"file_size"`
	Filename  *string `gorm:"size:255" json:"filename"`

	// IsRead is meaningful for direct messages only; group read state lives
	// in message_seens.
	IsRead bool `gorm:"default:false" json:"is_read"`
	Pinned bool `gorm:"default:false" json:"pinned"`
}

// HasExclusiveTarget reports whether exactly one of receiver and group is set.
func (m *Message) HasExclusiveTarget() bool {
	return (m.ReceiverID != nil) != (m.GroupID != nil)
}

// MessagePayload is the enriched wire shape pushed to clients for new_message
// and new_group_message events and returned from history fetches. Parent
// preview fields are populated for reply and forward kinds.
type MessagePayload struct {
	ID         uint        `json:"id"`
	SenderID   uint        `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	ReceiverID *uint       `json:"receiver_id,omitempty"`
	GroupID    *uint       `json:"group_id,omitempty"`
	Content    string      `json:"content"`
	Kind       MessageKind `json:"type"`

	ParentMessageID *uint   `json:"parent_message_id,omitempty"`
	MediaURL        *string `json:"media_url"`
	MediaType       *string `json:"media_type"`
	FileSize        *int64  `json:"file_size"`
	Filename        *string `json:"filename"`
	Timestamp       string  `json:"timestamp"`
	IsRead          bool    `json:"is_read"`
	Pinned          bool    `json:"pinned"`

	ParentContent    string      `json:"parent_content,omitempty"`
	ParentKind       MessageKind `json:"parent_message_type,omitempty"`
	ParentMediaURL   *string     `json:"parent_media_url,omitempty"`
	ParentSenderName string      `json:"parent_sender_name,omitempty"`
	ParentFilename   *string     `json:"parent_filename,omitempty"`
	MessageHeader    string      `json:"message_header,omitempty"`
	HeaderIcon       string      `json:"header_icon,omitempty"`
}

// SeenUser is one entry of a group message's seen-by list.
type SeenUser struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	SeenAt string `json:"seen_at"`
}

// TimestampFormat renders UTC instants the way clients expect them.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
