package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts the group, its creator as admin, and the initial member set
// in one transaction.
func (r *GroupRepository) Create(group *models.Group, memberIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.GroupMember{
			GroupID: group.ID,
			UserID:  group.CreatorID,
			IsAdmin: true,
		}).Error; err != nil {
			return err
		}
		for _, userID := range memberIDs {
			if userID == group.CreatorID {
				continue
			}
			member := models.GroupMember{GroupID: group.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GroupRepository) FindByID(id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) NameExists(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Group{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) ListForUser(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) GroupIDsForUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *GroupRepository) Members(groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.Preload("User").Where("group_id = ?", groupID).Find(&members).Error
	return members, err
}

func (r *GroupRepository) MemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// AddMember is idempotent; an existing membership is left untouched.
func (r *GroupRepository) AddMember(groupID, userID uint, isAdmin bool) error {
	return r.db.Exec(`
		INSERT INTO group_members (group_id, user_id, is_admin, joined_at)
		VALUES (?, ?, ?, NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID, isAdmin).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID uint) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (r *GroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) IsAdmin(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_admin = TRUE", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
