package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"gorm.io/gorm"
)

type MessageSeenRepository struct {
	db *gorm.DB
}

func NewMessageSeenRepository(db *gorm.DB) *MessageSeenRepository {
	return &MessageSeenRepository{db: db}
}

// MarkSeen records a seen-marker. Concurrent marks for the same pair collapse
// into one row; the seen_at refresh on conflict keeps the call idempotent.
func (r *MessageSeenRepository) MarkSeen(messageID, userID uint) error {
	return r.db.Exec(`
		INSERT INTO message_seens (message_id, user_id, seen_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (message_id, user_id) DO UPDATE SET seen_at = NOW()
	`, messageID, userID).Error
}

func (r *MessageSeenRepository) SeenUsers(messageID uint) ([]models.SeenUser, error) {
	var rows []struct {
		UserID uint
		Name   string
		SeenAt string
	}
	err := r.db.Raw(`
		SELECT ms.user_id, COALESCE(u.name, 'Unknown User') AS name,
		       to_char(ms.seen_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"') AS seen_at
		FROM message_seens ms
		LEFT JOIN users u ON u.id = ms.user_id
		WHERE ms.message_id = ?
	`, messageID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.SeenUser, 0, len(rows))
	for _, row := range rows {
		users = append(users, models.SeenUser{UserID: row.UserID, Name: row.Name, SeenAt: row.SeenAt})
	}
	return users, nil
}

func (r *MessageSeenRepository) HasSeen(messageID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.MessageSeen{}).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Count(&count).Error
	return count > 0, err
}
