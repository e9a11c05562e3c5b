package service

import (
	"log"
	"strings"

	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/repository"
	"github.com/relaychat/relaychat-backend/internal/validation"
)

// GroupService manages group lifecycle and membership. The creator is always
// an admin; only admins may add or remove other members.
type GroupService struct {
	groupRepo   repository.GroupRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	messageRepo repository.MessageRepositoryInterface
	notifier    Notifier
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	notifier Notifier,
) *GroupService {
	return &GroupService{
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		notifier:    notifier,
	}
}

type CreateGroupInput struct {
	Name      string `json:"name"`
	MemberIDs []uint `json:"member_ids"`
}

// CreateGroup creates a group with the creator as admin plus the given
// members, then notifies every member so their clients can join the room.
func (s *GroupService) CreateGroup(creatorID uint, input CreateGroupInput) (*models.GroupResponse, error) {
	if creatorID == 0 {
		return nil, ErrUnauthorized
	}
	name := strings.TrimSpace(input.Name)
	if !validation.ValidateGroupName(name) {
		return nil, &ValidationError{Reason: "group name is required"}
	}

	exists, err := s.groupRepo.NameExists(name)
	if err != nil {
		return nil, persistence(err)
	}
	if exists {
		return nil, ErrDuplicateGroupName
	}

	group := &models.Group{Name: name, CreatorID: creatorID}
	memberIDs := dedupeMemberIDs(creatorID, input.MemberIDs)
	if err := s.groupRepo.Create(group, memberIDs); err != nil {
		// The unique index may reject a concurrent create that NameExists
		// missed.
		if exists, checkErr := s.groupRepo.NameExists(name); checkErr == nil && exists {
			return nil, ErrDuplicateGroupName
		}
		return nil, persistence(err)
	}

	resp := &models.GroupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CreatorID: group.CreatorID,
		CreatedAt: models.FormatTimestamp(group.CreatedAt),
	}

	if s.notifier != nil {
		for _, memberID := range memberIDs {
			s.notifier.GroupCreated(memberID, resp)
		}
	}
	return resp, nil
}

// ListForUser returns the user's groups with unread counts and last-activity
// hints for conversation ordering.
func (s *GroupService) ListForUser(userID uint) ([]models.GroupResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	groups, err := s.groupRepo.ListForUser(userID)
	if err != nil {
		return nil, persistence(err)
	}
	unread, err := s.messageRepo.GroupUnreadCounts(userID)
	if err != nil {
		log.Printf("failed to load group unread counts for user %d: %v", userID, err)
		unread = map[uint]int64{}
	}

	responses := make([]models.GroupResponse, 0, len(groups))
	for _, g := range groups {
		resp := models.GroupResponse{
			ID:          g.ID,
			Name:        g.Name,
			CreatorID:   g.CreatorID,
			CreatedAt:   models.FormatTimestamp(g.CreatedAt),
			UnreadCount: unread[g.ID],
		}
		if last, err := s.messageRepo.LastGroupActivity(g.ID); err == nil && last != nil {
			resp.LastActivity = models.FormatTimestamp(last.CreatedAt)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Members returns the group roster with display names.
func (s *GroupService) Members(userID, groupID uint) ([]models.UserResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, persistence(err)
	}
	if !member {
		return nil, ErrUnauthorized
	}
	members, err := s.groupRepo.Members(groupID)
	if err != nil {
		return nil, persistence(err)
	}
	users := make([]models.UserResponse, 0, len(members))
	for _, m := range members {
		users = append(users, m.User.ToResponse())
	}
	return users, nil
}

// AddMember adds a user to a group; only admins may do so. Adding an
// existing member is a no-op.
func (s *GroupService) AddMember(adminID, groupID, userID uint) error {
	if err := s.requireAdmin(groupID, adminID); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil || user == nil {
		return &NotFoundError{Resource: "user"}
	}
	if err := s.groupRepo.AddMember(groupID, userID, false); err != nil {
		return persistence(err)
	}
	return nil
}

// RemoveMember removes a user from a group. Admins may remove anyone; a
// regular member may only remove themselves (leave).
func (s *GroupService) RemoveMember(actorID, groupID, userID uint) error {
	if actorID == 0 {
		return ErrUnauthorized
	}
	if actorID != userID {
		if err := s.requireAdmin(groupID, actorID); err != nil {
			return err
		}
	}
	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		return persistence(err)
	}
	return nil
}

// IsMember reports group membership, for transport-level room join checks.
func (s *GroupService) IsMember(groupID, userID uint) (bool, error) {
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return false, persistence(err)
	}
	return member, nil
}

// GroupIDsForUser lists the ids of every group the user belongs to.
func (s *GroupService) GroupIDsForUser(userID uint) ([]uint, error) {
	ids, err := s.groupRepo.GroupIDsForUser(userID)
	if err != nil {
		return nil, persistence(err)
	}
	return ids, nil
}

func (s *GroupService) requireAdmin(groupID, userID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	admin, err := s.groupRepo.IsAdmin(groupID, userID)
	if err != nil {
		return persistence(err)
	}
	if !admin {
		return ErrUnauthorized
	}
	return nil
}

// dedupeMemberIDs puts the creator first and drops duplicates and zeros.
func dedupeMemberIDs(creatorID uint, ids []uint) []uint {
	seen := map[uint]struct{}{creatorID: {}}
	out := []uint{creatorID}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
