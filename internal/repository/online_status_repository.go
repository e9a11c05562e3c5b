package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"gorm.io/gorm"
)

type OnlineStatusRepository struct {
	db *gorm.DB
}

func NewOnlineStatusRepository(db *gorm.DB) *OnlineStatusRepository {
	return &OnlineStatusRepository{db: db}
}

// SetOnline upserts the presence row; last_seen always moves forward so the
// away window starts from the most recent transition.
func (r *OnlineStatusRepository) SetOnline(userID uint, online bool) error {
	return r.db.Exec(`
		INSERT INTO online_statuses (user_id, is_online, last_seen)
		VALUES (?, ?, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET is_online = EXCLUDED.is_online, last_seen = EXCLUDED.last_seen
	`, userID, online).Error
}

func (r *OnlineStatusRepository) Get(userID uint) (*models.OnlineStatus, error) {
	var status models.OnlineStatus
	err := r.db.Where("user_id = ?", userID).First(&status).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ListOnline returns users currently online or within the away window.
func (r *OnlineStatusRepository) ListOnline() ([]models.OnlineStatus, error) {
	var statuses []models.OnlineStatus
	err := r.db.
		Where("is_online = TRUE OR last_seen >= NOW() - INTERVAL '5 minutes'").
		Find(&statuses).Error
	return statuses, err
}
