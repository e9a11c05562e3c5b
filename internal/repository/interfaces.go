package repository

import (
	"github.com/relaychat/relaychat-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	RecordLogin(userID uint, sessionID string) error
	RecordLogout(userID uint) error
	ListActive() ([]models.User, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindConversation(userID1, userID2 uint, limit int) ([]models.Message, error)
	FindGroupMessages(groupID uint, limit int) ([]models.Message, error)
	MarkRead(messageID uint) error
	MarkReadBulk(messageIDs []uint) error
	PinMessage(messageID uint, pinned bool) error
	FindPinnedDirect(userID1, userID2 uint) ([]models.Message, error)
	FindPinnedGroup(groupID uint) ([]models.Message, error)
	SearchDirect(query string, userID1, userID2 uint, limit int) ([]models.Message, error)
	SearchGroup(query string, groupID uint, limit int) ([]models.Message, error)
	DirectUnreadCounts(userID uint) (map[uint]int64, error)
	GroupUnreadCounts(userID uint) (map[uint]int64, error)
	LastGroupActivity(groupID uint) (*models.Message, error)
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group, memberIDs []uint) error
	FindByID(id uint) (*models.Group, error)
	NameExists(name string) (bool, error)
	ListForUser(userID uint) ([]models.Group, error)
	GroupIDsForUser(userID uint) ([]uint, error)
	Members(groupID uint) ([]models.GroupMember, error)
	MemberIDs(groupID uint) ([]uint, error)
	AddMember(groupID, userID uint, isAdmin bool) error
	RemoveMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
	IsAdmin(groupID, userID uint) (bool, error)
}

// MessageSeenRepositoryInterface defines the contract for group seen-markers
type MessageSeenRepositoryInterface interface {
	MarkSeen(messageID, userID uint) error
	SeenUsers(messageID uint) ([]models.SeenUser, error)
	HasSeen(messageID, userID uint) (bool, error)
}

// OnlineStatusRepositoryInterface defines the contract for presence rows
type OnlineStatusRepositoryInterface interface {
	SetOnline(userID uint, online bool) error
	Get(userID uint) (*models.OnlineStatus, error)
	ListOnline() ([]models.OnlineStatus, error)
}

// ChatPinRepositoryInterface defines the contract for per-user chat pins
type ChatPinRepositoryInterface interface {
	Set(userID uint, targetType models.PinTargetType, targetID string, pin bool) error
	ListForUser(userID uint) ([]models.ChatPin, error)
}
