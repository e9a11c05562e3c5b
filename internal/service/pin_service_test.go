package service

import (
	"errors"
	"testing"

	"github.com/relaychat/relaychat-backend/internal/models"
)

func TestSetChatPin(t *testing.T) {
	pins := &mockChatPinRepo{}
	notifier := &recorderNotifier{}
	svc := NewPinService(pins, notifier)

	if err := svc.SetChatPin(1, models.PinTargetUser, "2", true); err != nil {
		t.Fatalf("SetChatPin() error: %v", err)
	}
	if err := svc.SetChatPin(1, models.PinTargetGroup, "7", true); err != nil {
		t.Fatalf("SetChatPin() error: %v", err)
	}
	if got := notifier.count("chat_pin_updated"); got != 2 {
		t.Errorf("chat_pin_updated notifications = %d, want 2", got)
	}

	list, err := svc.ChatPins(1)
	if err != nil {
		t.Fatalf("ChatPins() error: %v", err)
	}
	if len(list.Users) != 1 || list.Users[0] != "2" {
		t.Errorf("Users = %v, want [2]", list.Users)
	}
	if len(list.Groups) != 1 || list.Groups[0] != 7 {
		t.Errorf("Groups = %v, want [7]", list.Groups)
	}
}

func TestUnpinRemovesEntry(t *testing.T) {
	pins := &mockChatPinRepo{}
	svc := NewPinService(pins, nil)

	svc.SetChatPin(1, models.PinTargetUser, "2", true)
	if err := svc.SetChatPin(1, models.PinTargetUser, "2", false); err != nil {
		t.Fatalf("unpin error: %v", err)
	}
	list, _ := svc.ChatPins(1)
	if len(list.Users) != 0 {
		t.Errorf("Users = %v, want empty after unpin", list.Users)
	}
}

func TestChatPinsScopedToUser(t *testing.T) {
	pins := &mockChatPinRepo{}
	svc := NewPinService(pins, nil)

	svc.SetChatPin(1, models.PinTargetUser, "2", true)
	svc.SetChatPin(3, models.PinTargetUser, "4", true)

	list, _ := svc.ChatPins(1)
	if len(list.Users) != 1 || list.Users[0] != "2" {
		t.Errorf("Users = %v, want only user 1's pins", list.Users)
	}
}

func TestSetChatPinValidation(t *testing.T) {
	svc := NewPinService(&mockChatPinRepo{}, nil)

	var ve *ValidationError
	if err := svc.SetChatPin(1, "channel", "2", true); !errors.As(err, &ve) {
		t.Errorf("bad target type: got %v, want ValidationError", err)
	}
	if err := svc.SetChatPin(1, models.PinTargetUser, "", true); !errors.As(err, &ve) {
		t.Errorf("empty target id: got %v, want ValidationError", err)
	}
	if err := svc.SetChatPin(0, models.PinTargetUser, "2", true); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("anonymous: got %v, want ErrUnauthorized", err)
	}
}

func TestChatPinsEmptyListsNotNil(t *testing.T) {
	svc := NewPinService(&mockChatPinRepo{}, nil)

	list, err := svc.ChatPins(1)
	if err != nil {
		t.Fatalf("ChatPins() error: %v", err)
	}
	if list.Users == nil || list.Groups == nil {
		t.Error("empty pin lists must serialize as [] not null")
	}
}
