package room

// Member is a room membership entry. ConnID is a non-owning reference into
// the ConnectionRegistry, which owns the connection to username mapping.
type Member struct {
	ConnID   string
	Username string
}

type roomState struct {
	id      string
	members []Member
}

// Store maps room ids to their membership, insertion order preserved.
// Rooms live only in process memory, a restart loses all of them.
//
// Store does no locking of its own. Every mutation goes through the
// SessionGateway, which serializes access to Store, ConnectionRegistry and
// presence publication under a single mutex.
type Store struct {
	rooms map[string]*roomState
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*roomState),
	}
}

// CreateRoom initializes an empty room. The id is caller-supplied and
// case-sensitive.
func (s *Store) CreateRoom(id string) error {
	if id == "" {
		return ErrRoomIDIsEmpty
	}
	if _, exist := s.rooms[id]; exist {
		return ErrRoomAlreadyExists
	}
	s.rooms[id] = &roomState{id: id}
	return nil
}

func (s *Store) RoomExists(id string) bool {
	_, exist := s.rooms[id]
	return exist
}

// AddMember appends to the room membership. The store does not enforce the
// one-room-per-connection constraint, the ConnectionRegistry does.
func (s *Store) AddMember(id, connID, username string) error {
	state, exist := s.rooms[id]
	if !exist {
		return ErrRoomNotExist
	}
	state.members = append(state.members, Member{ConnID: connID, Username: username})
	return nil
}

// RemoveMember scans all rooms for the connection and removes it. A room
// left with zero members is destroyed immediately.
func (s *Store) RemoveMember(connID string) (roomID, username string, err error) {
	for id, state := range s.rooms {
		for i, m := range state.members {
			if m.ConnID != connID {
				continue
			}
			state.members = append(state.members[:i], state.members[i+1:]...)
			if len(state.members) == 0 {
				delete(s.rooms, id)
			}
			return id, m.Username, nil
		}
	}
	return "", "", ErrNotAMember
}

// Members returns the membership of a room in join order. An unknown room
// yields an empty slice, relays treat that as deliver-to-nobody.
func (s *Store) Members(id string) []Member {
	state, exist := s.rooms[id]
	if !exist {
		return nil
	}
	result := make([]Member, len(state.members))
	copy(result, state.members)
	return result
}
