package room

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/wsutils"
	"golang.org/x/sync/errgroup"
)

// PresenceTracker publishes the full active-user list. Each publish is an
// authoritative replacement, never a delta. The websocket implementation
// fans out to every connected channel, the interface exists so that can be
// swapped for scoped delivery later.
type PresenceTracker interface {
	Listen(id string, w *wsutils.ThreadSafeWriter)
	Stop(id string)
	Publish(active []string)
}

// PresenceNotifier pushes update_active_users to every listening channel.
// Listeners are every live connection, not just room members.
type PresenceNotifier struct {
	listeners   map[string]*wsutils.ThreadSafeWriter
	listenersMu sync.Mutex
	logger      *slog.Logger
}

func NewPresenceNotifier(logger *slog.Logger) *PresenceNotifier {
	return &PresenceNotifier{
		listeners: make(map[string]*wsutils.ThreadSafeWriter),
		logger:    logger,
	}
}

func (n *PresenceNotifier) Listen(id string, w *wsutils.ThreadSafeWriter) {
	n.listenersMu.Lock()
	defer n.listenersMu.Unlock()
	n.listeners[id] = w
}

func (n *PresenceNotifier) Stop(id string) {
	n.listenersMu.Lock()
	defer n.listenersMu.Unlock()
	delete(n.listeners, id)
}

func (n *PresenceNotifier) getListeners() (result []*wsutils.ThreadSafeWriter) {
	n.listenersMu.Lock()
	defer n.listenersMu.Unlock()
	for _, listener := range n.listeners {
		result = append(result, listener)
	}
	return
}

func (n *PresenceNotifier) Publish(active []string) {
	raw, err := json.Marshal(active)
	if err != nil {
		n.logger.Error("presence marshal", slog.String("err", err.Error()))
		return
	}
	msg := &websocketMessage{Event: EventUpdateActiveUsers, Data: raw}

	var group errgroup.Group
	group.SetLimit(8)
	for _, listener := range n.getListeners() {
		w := listener
		group.Go(func() error {
			if err := w.WriteJSON(msg); err != nil {
				n.logger.Warn("presence write", slog.String("err", err.Error()))
			}
			// A dead listener is reaped by its own disconnect cascade, one
			// failed write never aborts the fan-out.
			return nil
		})
	}
	group.Wait()
}

var _ PresenceTracker = (*PresenceNotifier)(nil)
