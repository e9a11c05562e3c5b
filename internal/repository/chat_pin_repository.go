package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"gorm.io/gorm"
)

type ChatPinRepository struct {
	db *gorm.DB
}

func NewChatPinRepository(db *gorm.DB) *ChatPinRepository {
	return &ChatPinRepository{db: db}
}

// Set pins or unpins a conversation for one user. Unpinning deletes the row.
func (r *ChatPinRepository) Set(userID uint, targetType models.PinTargetType, targetID string, pin bool) error {
	if !pin {
		return r.db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			Delete(&models.ChatPin{}).Error
	}
	return r.db.Exec(`
		INSERT INTO chat_pins (user_id, target_type, target_id, pinned, pinned_at)
		VALUES (?, ?, ?, TRUE, NOW())
		ON CONFLICT (user_id, target_type, target_id) DO UPDATE
		SET pinned = TRUE, pinned_at = NOW()
	`, userID, targetType, targetID).Error
}

func (r *ChatPinRepository) ListForUser(userID uint) ([]models.ChatPin, error) {
	var pins []models.ChatPin
	err := r.db.Where("user_id = ? AND pinned = TRUE", userID).Find(&pins).Error
	return pins, err
}
