package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/relaychat/relaychat-backend/internal/metrics"
)

// Conn is the slice of *websocket.Conn the hub writes through. Tests swap in
// an in-memory fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Client is one websocket connection bound to an authenticated user. A user
// with several devices has several clients. Writes to the underlying
// connection are serialized through writeMu; gofiber's websocket does not
// allow concurrent writers.
type Client struct {
	conn    Conn
	userID  uint
	writeMu sync.Mutex

	lastPong   time.Time
	pingTicker *time.Ticker
	closeChan  chan struct{}
	closeOnce  sync.Once
}

func (c *Client) UserID() uint { return c.userID }

func (c *Client) write(frameType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(frameType, data)
}

// WriteEvent sends one enveloped event to this client only.
func (c *Client) WriteEvent(event string, payload interface{}) error {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

// Hub is the connection registry: every live client, grouped by user and by
// room. Personal rooms ("user:{id}") are joined on register; group rooms
// ("group:{id}") are joined on connect for current memberships and on
// explicit join_group events.
type Hub struct {
	mu          sync.RWMutex
	users       map[uint]map[*Client]struct{}
	rooms       map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}

	pingInterval time.Duration
	pongTimeout  time.Duration

	// Presence hooks, set once at wiring time before connections arrive.
	// The hub itself drops dead connections, so the transitions must fire
	// here rather than in the read-loop handler alone.
	OnFirstConnect   func(userID uint)
	OnLastDisconnect func(userID uint)
}

func NewHub() *Hub {
	hub := &Hub{
		users:        make(map[uint]map[*Client]struct{}),
		rooms:        make(map[string]map[*Client]struct{}),
		clientRooms:  make(map[*Client]map[string]struct{}),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}
	go hub.connectionHealthChecker()
	return hub
}

// UserRoom names the personal room every connection of a user joins.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// GroupRoom names the shared room for a group.
func GroupRoom(groupID uint) string {
	return fmt.Sprintf("group:%d", groupID)
}

// Register adds a connection and reports whether it is the user's first live
// one; the caller flips presence online only in that case.
func (h *Hub) Register(userID uint, conn Conn) (*Client, bool) {
	client := &Client{
		conn:       conn,
		userID:     userID,
		lastPong:   time.Now(),
		pingTicker: time.NewTicker(h.pingInterval),
		closeChan:  make(chan struct{}),
	}

	h.mu.Lock()
	first := len(h.users[userID]) == 0
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Client]struct{})
	}
	h.users[userID][client] = struct{}{}
	h.clientRooms[client] = make(map[string]struct{})
	h.joinRoomLocked(client, UserRoom(userID))
	total := h.connectionCountLocked()
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	go h.pingRoutine(client)

	if first && h.OnFirstConnect != nil {
		h.OnFirstConnect(userID)
	}

	log.Printf("User %d connected (connections: %d)", userID, total)
	return client, first
}

// Unregister removes a connection and reports whether it was the user's last
// live one; the caller flips presence offline only in that case.
func (h *Hub) Unregister(client *Client) bool {
	h.mu.Lock()
	if _, exists := h.clientRooms[client]; !exists {
		h.mu.Unlock()
		return false
	}
	for room := range h.clientRooms[client] {
		h.leaveRoomLocked(client, room)
	}
	delete(h.clientRooms, client)
	delete(h.users[client.userID], client)
	last := len(h.users[client.userID]) == 0
	if last {
		delete(h.users, client.userID)
	}
	total := h.connectionCountLocked()
	h.mu.Unlock()

	client.pingTicker.Stop()
	client.closeOnce.Do(func() { close(client.closeChan) })
	client.conn.Close()
	metrics.WSConnections.Dec()

	if last && h.OnLastDisconnect != nil {
		h.OnLastDisconnect(client.userID)
	}

	log.Printf("User %d disconnected (connections: %d)", client.userID, total)
	return last
}

// JoinRoom adds a client to a room; joining twice is a no-op.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, registered := h.clientRooms[client]; !registered {
		return
	}
	h.joinRoomLocked(client, room)
}

// LeaveRoom removes a client from a room; leaving a room it never joined is
// a no-op.
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoomLocked(client, room)
}

func (h *Hub) joinRoomLocked(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.clientRooms[client][room] = struct{}{}
}

func (h *Hub) leaveRoomLocked(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.clientRooms[client]; ok {
		delete(rooms, room)
	}
}

// EmitToRoom sends one event to every connection in a room. The envelope is
// marshaled once; a failed write unregisters that connection and delivery to
// the rest continues.
func (h *Hub) EmitToRoom(room, event string, payload interface{}) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		log.Printf("failed to encode %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		if err := client.write(websocket.TextMessage, data); err != nil {
			log.Printf("dropping connection of user %d after write error: %v", client.userID, err)
			h.Unregister(client)
		}
	}
}

// EmitToUser sends one event to every connection of a user.
func (h *Hub) EmitToUser(userID uint, event string, payload interface{}) {
	h.EmitToRoom(UserRoom(userID), event, payload)
}

// Broadcast sends one event to every live connection.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		log.Printf("failed to encode %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0)
	for _, conns := range h.users {
		for client := range conns {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.write(websocket.TextMessage, data); err != nil {
			log.Printf("dropping connection of user %d after write error: %v", client.userID, err)
			h.Unregister(client)
		}
	}
}

// IsOnline reports whether a user has at least one live connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// OnlineUserIDs lists users with at least one live connection.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uint, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	return ids
}

// RoomSize reports the number of connections in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ConnectionCount reports live connections across all users.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connectionCountLocked()
}

func (h *Hub) connectionCountLocked() int {
	total := 0
	for _, conns := range h.users {
		total += len(conns)
	}
	return total
}

// TouchPong records pong receipt; wired as the connection's pong handler.
func (h *Hub) TouchPong(client *Client) {
	h.mu.Lock()
	client.lastPong = time.Now()
	h.mu.Unlock()
}

func (h *Hub) pingRoutine(client *Client) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ping routine recovered for user %d: %v", client.userID, r)
		}
	}()

	for {
		select {
		case <-client.closeChan:
			return
		case <-client.pingTicker.C:
			client.writeMu.Lock()
			err := client.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
			client.writeMu.Unlock()
			if err != nil {
				log.Printf("ping failed for user %d: %v", client.userID, err)
				h.Unregister(client)
				return
			}
		}
	}
}

// connectionHealthChecker drops connections that stopped answering pings.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		h.mu.RLock()
		dead := make([]*Client, 0)
		for _, conns := range h.users {
			for client := range conns {
				if now.Sub(client.lastPong) > h.pongTimeout {
					dead = append(dead, client)
				}
			}
		}
		h.mu.RUnlock()

		for _, client := range dead {
			log.Printf("removing dead connection for user %d (no pong)", client.userID)
			h.Unregister(client)
		}
	}
}

func encodeEnvelope(event string, payload interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":    event,
		"payload": payload,
	})
}
