package models

import (
	"testing"
	"time"
)

func TestHasExclusiveTarget(t *testing.T) {
	receiver := uint(2)
	group := uint(5)

	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"direct", Message{ReceiverID: &receiver}, true},
		{"group", Message{GroupID: &group}, true},
		{"neither", Message{}, false},
		{"both", Message{ReceiverID: &receiver, GroupID: &group}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.HasExclusiveTarget(); got != tt.want {
				t.Errorf("HasExclusiveTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	instant := time.Date(2024, 3, 15, 10, 30, 45, 123456000, time.UTC)
	if got := FormatTimestamp(instant); got != "2024-03-15T10:30:45.123456Z" {
		t.Errorf("FormatTimestamp() = %q", got)
	}

	// Non-UTC instants are normalized.
	loc := time.FixedZone("plus2", 2*60*60)
	shifted := time.Date(2024, 3, 15, 12, 30, 45, 123456000, loc)
	if got := FormatTimestamp(shifted); got != "2024-03-15T10:30:45.123456Z" {
		t.Errorf("FormatTimestamp(non-UTC) = %q", got)
	}
}
