package service

import (
	"strconv"

	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/repository"
)

// PinService manages per-user conversation-list pins. These are ordering
// hints, unrelated to the per-message pin flag.
type PinService struct {
	pinRepo  repository.ChatPinRepositoryInterface
	notifier Notifier
}

func NewPinService(pinRepo repository.ChatPinRepositoryInterface, notifier Notifier) *PinService {
	return &PinService{pinRepo: pinRepo, notifier: notifier}
}

// ChatPinList is the grouped shape clients consume: pinned direct peers by
// id string, pinned groups by numeric id.
type ChatPinList struct {
	Users  []string `json:"users"`
	Groups []uint   `json:"groups"`
}

// SetChatPin pins or unpins one conversation in the user's list and echoes
// the change back to their other connections.
func (s *PinService) SetChatPin(userID uint, targetType models.PinTargetType, targetID string, pin bool) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if targetType != models.PinTargetUser && targetType != models.PinTargetGroup {
		return &ValidationError{Reason: "target_type must be user or group"}
	}
	if targetID == "" {
		return &ValidationError{Reason: "target_id is required"}
	}
	if err := s.pinRepo.Set(userID, targetType, targetID, pin); err != nil {
		return persistence(err)
	}
	if s.notifier != nil {
		s.notifier.ChatPinUpdated(userID, targetType, targetID, pin)
	}
	return nil
}

// ChatPins returns the user's pinned conversations, grouped by target type.
func (s *PinService) ChatPins(userID uint) (*ChatPinList, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	pins, err := s.pinRepo.ListForUser(userID)
	if err != nil {
		return nil, persistence(err)
	}
	list := &ChatPinList{Users: []string{}, Groups: []uint{}}
	for _, p := range pins {
		if !p.Pinned {
			continue
		}
		switch p.TargetType {
		case models.PinTargetUser:
			list.Users = append(list.Users, p.TargetID)
		case models.PinTargetGroup:
			if id, err := strconv.ParseUint(p.TargetID, 10, 32); err == nil {
				list.Groups = append(list.Groups, uint(id))
			}
		}
	}
	return list, nil
}
