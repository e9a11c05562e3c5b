package service

import (
	"errors"
	"strings"
	"time"

	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/storage"
	"github.com/relaychat/relaychat-backend/internal/testutil"
)

// In-memory repository mocks. Behavior is the minimum the services exercise;
// errors can be forced per-method via the fail* fields.

type mockUserRepo struct {
	users       map[uint]*models.User
	loginCalls  int
	logoutCalls int
	failLogin   bool
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByID(id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, testutil.RecordNotFound()
	}
	return u, nil
}

func (m *mockUserRepo) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, testutil.RecordNotFound()
}

func (m *mockUserRepo) RecordLogin(userID uint, sessionID string) error {
	if m.failLogin {
		return errors.New("db down")
	}
	m.loginCalls++
	return nil
}

func (m *mockUserRepo) RecordLogout(userID uint) error {
	m.logoutCalls++
	return nil
}

func (m *mockUserRepo) ListActive() ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if u.IsActive() {
			out = append(out, *u)
		}
	}
	return out, nil
}

type mockMessageRepo struct {
	messages    map[uint]*models.Message
	nextID      uint
	groupUnread map[uint]int64
	failCreate  bool
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{
		messages:    make(map[uint]*models.Message),
		nextID:      1,
		groupUnread: make(map[uint]int64),
	}
}

func (m *mockMessageRepo) Create(message *models.Message) error {
	if m.failCreate {
		return errors.New("db down")
	}
	message.ID = m.nextID
	m.nextID++
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	stored := *message
	m.messages[message.ID] = &stored
	return nil
}

func (m *mockMessageRepo) FindByID(id uint) (*models.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, testutil.RecordNotFound()
	}
	return msg, nil
}

func (m *mockMessageRepo) FindConversation(userID1, userID2 uint, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ReceiverID == nil {
			continue
		}
		a, b := msg.SenderID, *msg.ReceiverID
		if (a == userID1 && b == userID2) || (a == userID2 && b == userID1) {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) FindGroupMessages(groupID uint, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) MarkRead(messageID uint) error {
	if msg, ok := m.messages[messageID]; ok {
		msg.IsRead = true
	}
	return nil
}

func (m *mockMessageRepo) MarkReadBulk(messageIDs []uint) error {
	for _, id := range messageIDs {
		if msg, ok := m.messages[id]; ok {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *mockMessageRepo) PinMessage(messageID uint, pinned bool) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return testutil.RecordNotFound()
	}
	msg.Pinned = pinned
	return nil
}

func (m *mockMessageRepo) FindPinnedDirect(userID1, userID2 uint) ([]models.Message, error) {
	msgs, _ := m.FindConversation(userID1, userID2, 0)
	var out []models.Message
	for _, msg := range msgs {
		if msg.Pinned {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) FindPinnedGroup(groupID uint) ([]models.Message, error) {
	msgs, _ := m.FindGroupMessages(groupID, 0)
	var out []models.Message
	for _, msg := range msgs {
		if msg.Pinned {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) SearchDirect(query string, userID1, userID2 uint, limit int) ([]models.Message, error) {
	msgs, _ := m.FindConversation(userID1, userID2, limit)
	var out []models.Message
	for _, msg := range msgs {
		if strings.Contains(strings.ToLower(msg.Content), strings.ToLower(query)) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) SearchGroup(query string, groupID uint, limit int) ([]models.Message, error) {
	msgs, _ := m.FindGroupMessages(groupID, limit)
	var out []models.Message
	for _, msg := range msgs {
		if strings.Contains(strings.ToLower(msg.Content), strings.ToLower(query)) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) DirectUnreadCounts(userID uint) (map[uint]int64, error) {
	counts := make(map[uint]int64)
	for _, msg := range m.messages {
		if msg.ReceiverID != nil && *msg.ReceiverID == userID && !msg.IsRead && msg.GroupID == nil {
			counts[msg.SenderID]++
		}
	}
	return counts, nil
}

func (m *mockMessageRepo) GroupUnreadCounts(userID uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(m.groupUnread))
	for k, v := range m.groupUnread {
		out[k] = v
	}
	return out, nil
}

func (m *mockMessageRepo) LastGroupActivity(groupID uint) (*models.Message, error) {
	var last *models.Message
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID {
			if last == nil || msg.CreatedAt.After(last.CreatedAt) {
				last = msg
			}
		}
	}
	return last, nil
}

type mockGroupRepo struct {
	groups  map[uint]*models.Group
	members map[uint]map[uint]bool // groupID -> userID -> isAdmin
	nextID  uint
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{
		groups:  make(map[uint]*models.Group),
		members: make(map[uint]map[uint]bool),
		nextID:  1,
	}
}

func (m *mockGroupRepo) Create(group *models.Group, memberIDs []uint) error {
	group.ID = m.nextID
	m.nextID++
	group.CreatedAt = time.Now().UTC()
	m.groups[group.ID] = group
	m.members[group.ID] = make(map[uint]bool)
	for i, id := range memberIDs {
		m.members[group.ID][id] = i == 0 // creator first, admin
	}
	return nil
}

func (m *mockGroupRepo) FindByID(id uint) (*models.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, testutil.RecordNotFound()
	}
	return g, nil
}

func (m *mockGroupRepo) NameExists(name string) (bool, error) {
	for _, g := range m.groups {
		if g.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGroupRepo) ListForUser(userID uint) ([]models.Group, error) {
	var out []models.Group
	for id, g := range m.groups {
		if _, ok := m.members[id][userID]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockGroupRepo) GroupIDsForUser(userID uint) ([]uint, error) {
	var out []uint
	for id := range m.groups {
		if _, ok := m.members[id][userID]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *mockGroupRepo) Members(groupID uint) ([]models.GroupMember, error) {
	var out []models.GroupMember
	for userID, isAdmin := range m.members[groupID] {
		out = append(out, models.GroupMember{GroupID: groupID, UserID: userID, IsAdmin: isAdmin})
	}
	return out, nil
}

func (m *mockGroupRepo) MemberIDs(groupID uint) ([]uint, error) {
	var out []uint
	for userID := range m.members[groupID] {
		out = append(out, userID)
	}
	return out, nil
}

func (m *mockGroupRepo) AddMember(groupID, userID uint, isAdmin bool) error {
	if m.members[groupID] == nil {
		m.members[groupID] = make(map[uint]bool)
	}
	if _, exists := m.members[groupID][userID]; !exists {
		m.members[groupID][userID] = isAdmin
	}
	return nil
}

func (m *mockGroupRepo) RemoveMember(groupID, userID uint) error {
	delete(m.members[groupID], userID)
	return nil
}

func (m *mockGroupRepo) IsMember(groupID, userID uint) (bool, error) {
	_, ok := m.members[groupID][userID]
	return ok, nil
}

func (m *mockGroupRepo) IsAdmin(groupID, userID uint) (bool, error) {
	return m.members[groupID][userID], nil
}

type mockSeenRepo struct {
	seen      map[uint]map[uint]bool // messageID -> userID
	seenUsers map[uint][]models.SeenUser
}

func newMockSeenRepo() *mockSeenRepo {
	return &mockSeenRepo{
		seen:      make(map[uint]map[uint]bool),
		seenUsers: make(map[uint][]models.SeenUser),
	}
}

func (m *mockSeenRepo) MarkSeen(messageID, userID uint) error {
	if m.seen[messageID] == nil {
		m.seen[messageID] = make(map[uint]bool)
	}
	m.seen[messageID][userID] = true
	return nil
}

func (m *mockSeenRepo) SeenUsers(messageID uint) ([]models.SeenUser, error) {
	if users, ok := m.seenUsers[messageID]; ok {
		return users, nil
	}
	var out []models.SeenUser
	for userID := range m.seen[messageID] {
		out = append(out, models.SeenUser{UserID: userID})
	}
	return out, nil
}

func (m *mockSeenRepo) HasSeen(messageID, userID uint) (bool, error) {
	return m.seen[messageID][userID], nil
}

type mockStatusRepo struct {
	rows map[uint]*models.OnlineStatus
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{rows: make(map[uint]*models.OnlineStatus)}
}

func (m *mockStatusRepo) SetOnline(userID uint, online bool) error {
	m.rows[userID] = &models.OnlineStatus{UserID: userID, IsOnline: online, LastSeen: time.Now().UTC()}
	return nil
}

func (m *mockStatusRepo) Get(userID uint) (*models.OnlineStatus, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (m *mockStatusRepo) ListOnline() ([]models.OnlineStatus, error) {
	var out []models.OnlineStatus
	for _, row := range m.rows {
		if row.IsOnline || time.Since(row.LastSeen) <= models.AwayWindow {
			out = append(out, *row)
		}
	}
	return out, nil
}

type mockChatPinRepo struct {
	pins []models.ChatPin
}

func (m *mockChatPinRepo) Set(userID uint, targetType models.PinTargetType, targetID string, pin bool) error {
	for i := range m.pins {
		p := &m.pins[i]
		if p.UserID == userID && p.TargetType == targetType && p.TargetID == targetID {
			if !pin {
				m.pins = append(m.pins[:i], m.pins[i+1:]...)
			}
			return nil
		}
	}
	if pin {
		m.pins = append(m.pins, models.ChatPin{
			UserID: userID, TargetType: targetType, TargetID: targetID, Pinned: true, PinnedAt: time.Now(),
		})
	}
	return nil
}

func (m *mockChatPinRepo) ListForUser(userID uint) ([]models.ChatPin, error) {
	var out []models.ChatPin
	for _, p := range m.pins {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// recorderNotifier captures every notification for assertions.

type notification struct {
	event string
	args  []interface{}
}

type recorderNotifier struct {
	events []notification
}

func (r *recorderNotifier) record(event string, args ...interface{}) {
	r.events = append(r.events, notification{event: event, args: args})
}

func (r *recorderNotifier) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func (r *recorderNotifier) DirectMessage(payload *models.MessagePayload) {
	r.record("direct_message", payload)
}

func (r *recorderNotifier) GroupMessage(payload *models.MessagePayload) {
	r.record("group_message", payload)
}

func (r *recorderNotifier) MessageRead(senderID, messageID uint) {
	r.record("message_read", senderID, messageID)
}

func (r *recorderNotifier) MessageDelivered(senderID, messageID uint) {
	r.record("message_delivered", senderID, messageID)
}

func (r *recorderNotifier) UnreadCounts(userID uint, counts map[string]int64) {
	r.record("unread_counts", userID, counts)
}

func (r *recorderNotifier) DirectActivity(userID, peerID uint, timestamp int64) {
	r.record("direct_activity", userID, peerID)
}

func (r *recorderNotifier) GroupActivity(userID, groupID uint, timestamp int64) {
	r.record("group_activity", userID, groupID)
}

func (r *recorderNotifier) MessagePinned(senderID uint, receiverID *uint, messageID uint, pinned bool) {
	r.record("message_pinned", senderID, messageID, pinned)
}

func (r *recorderNotifier) GroupMessagePinned(groupID, messageID uint, pinned bool) {
	r.record("group_message_pinned", groupID, messageID, pinned)
}

func (r *recorderNotifier) GroupSeenUpdate(groupID, messageID uint, seenUsers []models.SeenUser) {
	r.record("group_seen_update", groupID, messageID, seenUsers)
}

func (r *recorderNotifier) ChatPinUpdated(userID uint, targetType models.PinTargetType, targetID string, pin bool) {
	r.record("chat_pin_updated", userID, targetID, pin)
}

func (r *recorderNotifier) GroupCreated(userID uint, group *models.GroupResponse) {
	r.record("group_created", userID, group)
}

// fakeStore stands in for the attachment store.

type fakeStore struct {
	calls int
	err   error
	saved storage.Saved
}

func (f *fakeStore) Save(payload, originalFilename string) (storage.Saved, error) {
	f.calls++
	if f.err != nil {
		return storage.Saved{}, f.err
	}
	return f.saved, nil
}
