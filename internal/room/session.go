package room

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/wsutils"
	"go.uber.org/atomic"
	"go.uber.org/fx"
)

type SessionState int32

const (
	// StateConnected is the channel-open, no-room-yet state.
	StateConnected SessionState = iota
	// StateRoomSelected is entered on a successful join_room. There is no
	// way back to StateConnected, one room per connection for the lifetime
	// of the channel.
	StateRoomSelected
	// StateClosed is entered on disconnect cleanup.
	StateClosed
)

// Session is one live client channel. The connection id is assigned here
// and opaque to everything else.
type Session struct {
	ID string

	ws      *wsutils.ThreadSafeWriter
	state   atomic.Int32
	cleaned atomic.Bool
}

func NewSession(w *wsutils.ThreadSafeWriter) *Session {
	return &Session{
		ID: uuid.NewString(),
		ws: w,
	}
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) ack(success bool, message string) {
	raw, _ := json.Marshal(&ackResponse{Success: success, Message: message})
	s.ws.WriteJSON(&websocketMessage{Event: "ack", Data: raw})
}

// SessionGateway binds the event channel to the Store, ConnectionRegistry,
// PresenceTracker and Relay. Every mutation of shared state runs under one
// mutex, so each inbound event is handled to completion before the next
// touches the maps.
type SessionGateway struct {
	mu sync.Mutex

	store    *Store
	registry *ConnectionRegistry
	presence PresenceTracker
	relay    *Relay
	logger   *slog.Logger
}

type NewSessionGatewayParams struct {
	fx.In

	Store    *Store
	Registry *ConnectionRegistry
	Presence PresenceTracker
	Relay    *Relay
	Logger   *slog.Logger
}

func NewSessionGateway(params NewSessionGatewayParams) *SessionGateway {
	return &SessionGateway{
		store:    params.Store,
		registry: params.Registry,
		presence: params.Presence,
		relay:    params.Relay,
		logger:   params.Logger,
	}
}

// Register attaches a fresh channel to the relay and presence fan-out.
func (g *SessionGateway) Register(sess *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.relay.Attach(sess.ID, sess.ws)
	g.presence.Listen(sess.ID, sess.ws)
	g.logger.Info("session connected", slog.String("conn", sess.ID))
}

// Dispatch handles one inbound event to completion. Command failures are
// acked to the caller only and never interrupt other connections.
func (g *SessionGateway) Dispatch(sess *Session, msg *websocketMessage) {
	switch msg.Event {
	case EventCreateRoom:
		g.handleCreateRoom(sess, msg.Data)
	case EventCheckRoom:
		g.handleCheckRoom(sess, msg.Data)
	case EventJoinRoom:
		g.handleJoinRoom(sess, msg.Data)
	case EventJoinVideoRoom:
		g.handleJoinVideoRoom(sess, msg.Data)
	case EventSendMessage:
		g.handleSendMessage(sess, msg.Data)
	case EventOffer, EventAnswer:
		g.handleSignal(sess, msg.Event, msg.Data)
	case EventICECandidate:
		g.handleCandidate(sess, msg.Data)
	default:
		g.logger.Warn("unknown event", slog.String("event", msg.Event), slog.String("conn", sess.ID))
	}
}

func (g *SessionGateway) handleCreateRoom(sess *Session, data json.RawMessage) {
	var roomName string
	if err := json.Unmarshal(data, &roomName); err != nil {
		sess.ack(false, "wrong data format")
		return
	}

	g.mu.Lock()
	err := g.store.CreateRoom(roomName)
	g.mu.Unlock()

	if err != nil {
		sess.ack(false, "Room already exists.")
		return
	}
	g.logger.Info("room created", slog.String("room", roomName), slog.String("conn", sess.ID))
	sess.ack(true, "")
}

func (g *SessionGateway) handleCheckRoom(sess *Session, data json.RawMessage) {
	var roomName string
	if err := json.Unmarshal(data, &roomName); err != nil {
		sess.ack(false, "wrong data format")
		return
	}

	g.mu.Lock()
	exists := g.store.RoomExists(roomName)
	g.mu.Unlock()

	resp := &existsResponse{Exists: exists}
	if !exists {
		resp.Message = "Room does not exist."
	}
	raw, _ := json.Marshal(resp)
	sess.ws.WriteJSON(&websocketMessage{Event: "ack", Data: raw})
}

func (g *SessionGateway) handleJoinRoom(sess *Session, data json.RawMessage) {
	var req joinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sess.ack(false, "wrong data format")
		return
	}

	g.mu.Lock()
	if !g.store.RoomExists(req.Room) {
		g.mu.Unlock()
		sess.ack(false, "This room does not exist.")
		return
	}
	if err := g.registry.Bind(sess.ID, req.Username, req.Room); err != nil {
		g.mu.Unlock()
		sess.ack(false, err.Error())
		return
	}
	if err := g.store.AddMember(req.Room, sess.ID, req.Username); err != nil {
		// Room vanished between the exists check and the add, impossible
		// under the gateway mutex but kept as a guarded no-op.
		g.registry.Unbind(sess.ID)
		g.mu.Unlock()
		sess.ack(false, "This room does not exist.")
		return
	}
	g.relay.Subscribe(req.Room, sess.ID)
	sess.state.Store(int32(StateRoomSelected))
	sess.ack(true, "")
	// Published under the mutex so every listener sees the snapshots in
	// mutation order, a later join can never be shadowed by an earlier one.
	g.presence.Publish(g.registry.Snapshot())
	g.mu.Unlock()

	g.logger.Info("user joined room",
		slog.String("room", req.Room),
		slog.String("username", req.Username),
		slog.String("conn", sess.ID))
}

func (g *SessionGateway) handleJoinVideoRoom(sess *Session, data json.RawMessage) {
	var roomName string
	if err := json.Unmarshal(data, &roomName); err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// Joining the video room makes this connection a relay recipient even
	// when it never issued join_room, the call surface skips that command.
	g.relay.Subscribe(roomName, sess.ID)
	g.relay.RelayToRoomExceptSender(roomName, sess.ID, EventUserConnected, sess.ID)
}

func (g *SessionGateway) handleSendMessage(sess *Session, data json.RawMessage) {
	var msg chatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.BroadcastToRoom(msg.Room, EventReceiveMessage, &receiveMessage{
		User:      msg.User,
		Message:   msg.Message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (g *SessionGateway) handleSignal(sess *Session, event string, data json.RawMessage) {
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.RelayToRoomExceptSender(p.Room, sess.ID, event, p.SDP)
}

func (g *SessionGateway) handleCandidate(sess *Session, data json.RawMessage) {
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.RelayToRoomExceptSender(p.Room, sess.ID, EventICECandidate, p.Candidate)
}

// Disconnect runs the cleanup cascade. It is safe to invoke more than once
// per session, only the first call does anything.
func (g *SessionGateway) Disconnect(sess *Session) {
	if !sess.cleaned.CompareAndSwap(false, true) {
		return
	}
	sess.state.Store(int32(StateClosed))

	g.mu.Lock()
	g.relay.Detach(sess.ID)
	g.presence.Stop(sess.ID)
	roomID, username, err := g.store.RemoveMember(sess.ID)
	g.registry.Unbind(sess.ID)
	if err == nil {
		g.presence.Publish(g.registry.Snapshot())
	}
	g.mu.Unlock()

	if err != nil {
		// Never joined a room, or the membership is already gone. Either
		// way the cleanup is a no-op.
		g.logger.Info("session closed", slog.String("conn", sess.ID))
		return
	}

	g.logger.Info("user disconnected from room",
		slog.String("room", roomID),
		slog.String("username", username),
		slog.String("conn", sess.ID))
}

// ActiveUsers reads the current display-name snapshot, used by the HTTP
// surface for non-channel clients.
func (g *SessionGateway) ActiveUsers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.registry.Snapshot()
}
