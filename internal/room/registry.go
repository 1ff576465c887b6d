package room

import "sort"

type binding struct {
	username string
	roomID   string
}

// ConnectionRegistry owns the connection to username mapping. Like Store it
// is unlocked, the SessionGateway serializes all access.
type ConnectionRegistry struct {
	conns map[string]binding
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns: make(map[string]binding),
	}
}

// Bind attaches a username and a current room to a connection. A connection
// stays bound to one room for its whole lifetime, a second bind is rejected.
func (r *ConnectionRegistry) Bind(connID, username, roomID string) error {
	if existing, exist := r.conns[connID]; exist && existing.roomID != "" {
		return ErrAlreadyInRoom
	}
	r.conns[connID] = binding{username: username, roomID: roomID}
	return nil
}

// Unbind removes the connection and reports the username it carried.
func (r *ConnectionRegistry) Unbind(connID string) (username string, ok bool) {
	b, exist := r.conns[connID]
	if !exist {
		return "", false
	}
	delete(r.conns, connID)
	return b.username, true
}

func (r *ConnectionRegistry) RoomOf(connID string) (string, bool) {
	b, exist := r.conns[connID]
	if !exist || b.roomID == "" {
		return "", false
	}
	return b.roomID, true
}

// Snapshot returns every bound username. Order is stable within one call.
func (r *ConnectionRegistry) Snapshot() []string {
	result := make([]string, 0, len(r.conns))
	for _, b := range r.conns {
		result = append(result, b.username)
	}
	sort.Strings(result)
	return result
}
