package ws

import (
	"encoding/json"
	"testing"

	"github.com/relaychat/relaychat-backend/internal/models"
)

func newBroadcasterFixture(t *testing.T) (*Broadcaster, *Hub, map[uint]*fakeConn) {
	t.Helper()
	hub := NewHub()
	conns := make(map[uint]*fakeConn)
	for _, id := range []uint{1, 2, 3} {
		conn := &fakeConn{}
		conns[id] = conn
		hub.Register(id, conn)
	}
	return NewBroadcaster(hub), hub, conns
}

func lastEventType(t *testing.T, conn *fakeConn) string {
	t.Helper()
	frame := conn.lastFrame()
	if frame == nil {
		t.Fatal("no frame written")
	}
	return decodeEnvelope(t, frame).Type
}

func TestDirectMessageReachesBothParticipants(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	receiver := uint(2)
	b.DirectMessage(&models.MessagePayload{ID: 1, SenderID: 1, ReceiverID: &receiver})

	if got := lastEventType(t, conns[1]); got != "new_message" {
		t.Errorf("sender event = %q, want new_message", got)
	}
	if got := lastEventType(t, conns[2]); got != "new_message" {
		t.Errorf("receiver event = %q, want new_message", got)
	}
	if conns[3].frameCount() != 0 {
		t.Errorf("bystander got %d frames, want 0", conns[3].frameCount())
	}
}

func TestSelfMessageDeliveredOnce(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	self := uint(1)
	b.DirectMessage(&models.MessagePayload{ID: 1, SenderID: 1, ReceiverID: &self})

	if conns[1].frameCount() != 1 {
		t.Errorf("self-message delivered %d times, want 1", conns[1].frameCount())
	}
}

func TestGroupMessageGoesToRoomOnly(t *testing.T) {
	b, hub, conns := newBroadcasterFixture(t)
	groupID := uint(5)
	// Users 1 and 2 are in the group room; 3 is not.
	hub.mu.Lock()
	for client := range hub.users[1] {
		hub.joinRoomLocked(client, GroupRoom(groupID))
	}
	for client := range hub.users[2] {
		hub.joinRoomLocked(client, GroupRoom(groupID))
	}
	hub.mu.Unlock()

	b.GroupMessage(&models.MessagePayload{ID: 1, SenderID: 1, GroupID: &groupID})

	if got := lastEventType(t, conns[1]); got != "new_group_message" {
		t.Errorf("member event = %q, want new_group_message", got)
	}
	if conns[3].frameCount() != 0 {
		t.Errorf("non-member got %d frames, want 0", conns[3].frameCount())
	}

	// A payload without a group id is dropped, not misrouted.
	b.GroupMessage(&models.MessagePayload{ID: 2, SenderID: 1})
	if conns[1].frameCount() != 1 {
		t.Error("groupless payload must not be emitted")
	}
}

func TestReceiptEventsTargetSender(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	b.MessageRead(1, 10)
	if got := lastEventType(t, conns[1]); got != "message_read" {
		t.Errorf("event = %q, want message_read", got)
	}

	b.MessageDelivered(2, 10)
	if got := lastEventType(t, conns[2]); got != "message_delivered" {
		t.Errorf("event = %q, want message_delivered", got)
	}
	if conns[3].frameCount() != 0 {
		t.Errorf("bystander got %d frames, want 0", conns[3].frameCount())
	}
}

func TestUnreadCountsPayloadIsBareMapping(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	b.UnreadCounts(1, map[string]int64{"2": 1, "group:5": 3})

	env := decodeEnvelope(t, conns[1].lastFrame())
	if env.Type != "unread_counts_update" {
		t.Errorf("event = %q, want unread_counts_update", env.Type)
	}
	var counts map[string]int64
	if err := json.Unmarshal(env.Payload, &counts); err != nil {
		t.Fatalf("payload is not the mapping itself: %s", env.Payload)
	}
	if counts["2"] != 1 || counts["group:5"] != 3 {
		t.Errorf("counts = %v", counts)
	}
}

func TestActivityEvents(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	b.DirectActivity(1, 2, 123)
	env := decodeEnvelope(t, conns[1].lastFrame())
	if env.Type != "update_last_activity" {
		t.Errorf("event = %q, want update_last_activity", env.Type)
	}
	var direct struct {
		PeerID    uint  `json:"peer_id"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(env.Payload, &direct); err != nil {
		t.Fatalf("malformed payload: %s", env.Payload)
	}
	if direct.PeerID != 2 || direct.Timestamp != 123 {
		t.Errorf("payload = %s, want peer_id 2 and timestamp 123", env.Payload)
	}

	b.GroupActivity(1, 5, 123)
	env = decodeEnvelope(t, conns[1].lastFrame())
	if env.Type != "update_group_activity" {
		t.Errorf("event = %q, want update_group_activity", env.Type)
	}
	var group struct {
		GroupID uint `json:"group_id"`
	}
	if err := json.Unmarshal(env.Payload, &group); err != nil || group.GroupID != 5 {
		t.Errorf("payload = %s, want group_id 5", env.Payload)
	}
}

func TestMessagePinnedDeduplicatesSelf(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	receiver := uint(2)
	b.MessagePinned(1, &receiver, 10, true)
	if conns[1].frameCount() != 1 || conns[2].frameCount() != 1 {
		t.Errorf("pin reached %d/%d, want 1/1", conns[1].frameCount(), conns[2].frameCount())
	}

	self := uint(1)
	b.MessagePinned(1, &self, 11, true)
	if conns[1].frameCount() != 2 {
		t.Errorf("self-pin delivered %d extra frames, want 1", conns[1].frameCount()-1)
	}
}

func TestPresenceBroadcasts(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	b.UserConnected(9)
	for id, conn := range conns {
		if got := lastEventType(t, conn); got != "user_connected" {
			t.Errorf("user %d event = %q, want user_connected", id, got)
		}
	}

	b.UserDisconnected(9)
	for id, conn := range conns {
		if got := lastEventType(t, conn); got != "user_disconnected" {
			t.Errorf("user %d event = %q, want user_disconnected", id, got)
		}
	}
}

func TestChatPinAndGroupCreatedRouting(t *testing.T) {
	b, _, conns := newBroadcasterFixture(t)

	b.ChatPinUpdated(1, models.PinTargetGroup, "5", true)
	if got := lastEventType(t, conns[1]); got != "chat_pin_updated" {
		t.Errorf("event = %q, want chat_pin_updated", got)
	}

	b.GroupCreated(2, &models.GroupResponse{ID: 5, Name: "eng"})
	if got := lastEventType(t, conns[2]); got != "group_created" {
		t.Errorf("event = %q, want group_created", got)
	}
	if conns[3].frameCount() != 0 {
		t.Errorf("bystander got %d frames, want 0", conns[3].frameCount())
	}
}
