package room

import (
	"encoding/json"
	"log/slog"

	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/wsutils"
)

// Relay forwards opaque payloads between the subscribers of one room. It
// keeps the two delivery shapes as distinct primitives: chat goes to the
// whole room, signaling goes to everyone but the sender.
//
// Subscription is the routing layer, separate from Store membership: both
// join_room and join_video_room subscribe a connection, so video-only
// clients receive relays without ever appearing in the membership list.
//
// Relay shares the gateway mutex with Store and ConnectionRegistry.
type Relay struct {
	subs    map[string]map[string]struct{}
	writers map[string]*wsutils.ThreadSafeWriter
	logger  *slog.Logger
}

func NewRelay(logger *slog.Logger) *Relay {
	return &Relay{
		subs:    make(map[string]map[string]struct{}),
		writers: make(map[string]*wsutils.ThreadSafeWriter),
		logger:  logger,
	}
}

func (r *Relay) Attach(connID string, w *wsutils.ThreadSafeWriter) {
	r.writers[connID] = w
}

// Subscribe makes the connection a relay recipient for the room.
// Subscribing twice is a no-op.
func (r *Relay) Subscribe(roomID, connID string) {
	set, exist := r.subs[roomID]
	if !exist {
		set = make(map[string]struct{})
		r.subs[roomID] = set
	}
	set[connID] = struct{}{}
}

// Detach drops the writer and every subscription the connection holds.
func (r *Relay) Detach(connID string) {
	delete(r.writers, connID)
	for roomID, set := range r.subs {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.subs, roomID)
		}
	}
}

// BroadcastToRoom delivers the event to every subscriber of the room,
// sender included. An unknown or empty room delivers to nobody.
func (r *Relay) BroadcastToRoom(roomID, event string, data any) {
	r.deliver(roomID, "", event, data)
}

// RelayToRoomExceptSender delivers the event to every subscriber of the
// room except senderConnID.
func (r *Relay) RelayToRoomExceptSender(roomID, senderConnID, event string, data any) {
	r.deliver(roomID, senderConnID, event, data)
}

func (r *Relay) deliver(roomID, skipConnID, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("relay payload marshal", slog.String("event", event), slog.String("err", err.Error()))
		return
	}
	msg := &websocketMessage{Event: event, Data: raw}

	for connID := range r.subs[roomID] {
		if skipConnID != "" && connID == skipConnID {
			continue
		}
		w, exist := r.writers[connID]
		if !exist {
			continue
		}
		if err := w.WriteJSON(msg); err != nil {
			r.logger.Warn("relay write",
				slog.String("event", event),
				slog.String("room", roomID),
				slog.String("conn", connID),
				slog.String("err", err.Error()))
		}
	}
}
