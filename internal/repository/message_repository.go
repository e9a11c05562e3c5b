package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindConversation(userID1, userID2 uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").Preload("Parent").Preload("Parent.Sender").
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND group_id IS NULL",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) FindGroupMessages(groupID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").Preload("Parent").Preload("Parent.Sender").
		Where("group_id = ? AND receiver_id IS NULL", groupID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) MarkRead(messageID uint) error {
	return r.db.Model(&models.Message{}).Where("id = ?", messageID).
		Update("is_read", true).Error
}

func (r *MessageRepository) MarkReadBulk(messageIDs []uint) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.Message{}).Where("id IN ?", messageIDs).
		Update("is_read", true).Error
}

func (r *MessageRepository) PinMessage(messageID uint, pinned bool) error {
	return r.db.Model(&models.Message{}).Where("id = ?", messageID).
		Update("pinned", pinned).Error
}

func (r *MessageRepository) FindPinnedDirect(userID1, userID2 uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND group_id IS NULL AND pinned = TRUE",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) FindPinnedGroup(groupID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("group_id = ? AND pinned = TRUE", groupID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

// SearchDirect matches content, filename and media path within one direct
// conversation.
func (r *MessageRepository) SearchDirect(query string, userID1, userID2 uint, limit int) ([]models.Message, error) {
	like := "%" + query + "%"
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND group_id IS NULL",
			userID1, userID2, userID2, userID1).
		Where("(content ILIKE ? OR filename ILIKE ? OR media_url ILIKE ?)", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) SearchGroup(query string, groupID uint, limit int) ([]models.Message, error) {
	like := "%" + query + "%"
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("group_id = ?", groupID).
		Where("(content ILIKE ? OR filename ILIKE ? OR media_url ILIKE ?)", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

type unreadRow struct {
	Key   uint
	Count int64
}

// DirectUnreadCounts derives per-peer unread counts for direct messages.
// Always a fresh aggregation, never a stored counter.
func (r *MessageRepository) DirectUnreadCounts(userID uint) (map[uint]int64, error) {
	var rows []unreadRow
	err := r.db.Model(&models.Message{}).
		Select("sender_id AS key, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = FALSE AND group_id IS NULL", userID).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// GroupUnreadCounts derives per-group unread counts: messages in the user's
// groups with no seen-marker for the user, excluding self-authored ones.
func (r *MessageRepository) GroupUnreadCounts(userID uint) (map[uint]int64, error) {
	var rows []unreadRow
	err := r.db.Raw(`
		SELECT m.group_id AS key, COUNT(*) AS count
		FROM messages m
		JOIN group_members gm ON gm.group_id = m.group_id AND gm.user_id = ?
		LEFT JOIN message_seens ms ON ms.message_id = m.id AND ms.user_id = ?
		WHERE m.group_id IS NOT NULL
		  AND ms.message_id IS NULL
		  AND m.sender_id <> ?
		GROUP BY m.group_id
	`, userID, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *MessageRepository) LastGroupActivity(groupID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Where("group_id = ?", groupID).
		Order("created_at DESC").
		First(&message).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}
