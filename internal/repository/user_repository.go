package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) RecordLogin(userID uint, sessionID string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"session_id":  sessionID,
			"login_time":  gorm.Expr("NOW()"),
			"logout_time": nil,
		}).Error
}

func (r *UserRepository) RecordLogout(userID uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"session_id":  nil,
			"logout_time": gorm.Expr("NOW()"),
		}).Error
}

func (r *UserRepository) ListActive() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("LOWER(TRIM(status)) NOT IN ?", []string{"inactive", "disabled", "blocked", "0", "n", "false"}).
		Find(&users).Error
	return users, err
}
