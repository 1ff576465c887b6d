package room

import "encoding/json"

// Client commands.
const (
	EventCreateRoom    = "create_room"
	EventCheckRoom     = "check_room"
	EventJoinRoom      = "join_room"
	EventJoinVideoRoom = "join_video_room"
	EventSendMessage   = "send_message"
	EventOffer         = "offer"
	EventAnswer        = "answer"
	EventICECandidate  = "ice-candidate"
)

// Server broadcasts.
const (
	EventUpdateActiveUsers = "update_active_users"
	EventReceiveMessage    = "receive_message"
	EventUserConnected     = "user_connected"
)

type websocketMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type existsResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

type joinRoomRequest struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type chatMessage struct {
	Room    string `json:"room"`
	User    string `json:"user"`
	Message string `json:"message"`
}

type receiveMessage struct {
	User      string `json:"user"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// signalPayload carries a room scope plus an opaque body. The core never
// looks inside SDP or candidate, it only routes on Room.
type signalPayload struct {
	Room      string          `json:"room"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}
