package room

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *SessionGateway) {
	t.Helper()

	logger := testLogger()
	store := NewStore()
	gateway := NewSessionGateway(NewSessionGatewayParams{
		Store:    store,
		Registry: NewConnectionRegistry(),
		Presence: NewPresenceNotifier(logger),
		Relay:    NewRelay(logger),
		Logger:   logger,
	})
	ctrl := NewRoomController(newRoomController_Params{
		Gateway: gateway,
		Logger:  logger,
	})

	router := echo.New()
	require.NoError(t, ctrl.Resolve(router))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, gateway
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialClient(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(eventName string, payload any) {
	c.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(&websocketMessage{Event: eventName, Data: raw}))
}

// next reads frames until one matches eventName, skipping everything else.
func (c *testClient) next(eventName string) json.RawMessage {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(time.Second*3)))
	for {
		msg := &websocketMessage{}
		require.NoError(c.t, c.conn.ReadJSON(msg))
		if msg.Event == eventName {
			return msg.Data
		}
	}
}

func (c *testClient) nextAck() ackResponse {
	c.t.Helper()
	var ack ackResponse
	require.NoError(c.t, json.Unmarshal(c.next("ack"), &ack))
	return ack
}

func (c *testClient) nextActiveUsers() []string {
	c.t.Helper()
	var active []string
	require.NoError(c.t, json.Unmarshal(c.next(EventUpdateActiveUsers), &active))
	return active
}

func activeUsersOverHTTP(t *testing.T, srv *httptest.Server) []string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/active-users")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var active []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&active))
	return active
}

func waitForActiveUsers(t *testing.T, gateway *SessionGateway, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(gateway.ActiveUsers()) == want
	}, time.Second*3, time.Millisecond*10)
}

func TestChannelLifecycleScenario(t *testing.T) {
	srv, gateway := newTestServer(t)

	alice := dialClient(t, srv)

	alice.send(EventCreateRoom, "team-a")
	require.True(t, alice.nextAck().Success)

	alice.send(EventCreateRoom, "team-a")
	dup := alice.nextAck()
	require.False(t, dup.Success)
	assert.Equal(t, "Room already exists.", dup.Message)

	alice.send(EventCheckRoom, "team-a")
	var exists existsResponse
	require.NoError(t, json.Unmarshal(alice.next("ack"), &exists))
	require.True(t, exists.Exists)

	alice.send(EventJoinRoom, joinRoomRequest{Room: "team-a", Username: "alice"})
	require.True(t, alice.nextAck().Success)
	assert.Equal(t, []string{"alice"}, alice.nextActiveUsers())

	bob := dialClient(t, srv)
	bob.send(EventJoinRoom, joinRoomRequest{Room: "team-a", Username: "bob"})
	require.True(t, bob.nextAck().Success)
	assert.Equal(t, []string{"alice", "bob"}, bob.nextActiveUsers())
	assert.Equal(t, []string{"alice", "bob"}, alice.nextActiveUsers())
	assert.Equal(t, []string{"alice", "bob"}, activeUsersOverHTTP(t, srv))

	alice.conn.Close()
	assert.Equal(t, []string{"bob"}, bob.nextActiveUsers())
	assert.Equal(t, []string{"bob"}, activeUsersOverHTTP(t, srv))

	bob.conn.Close()
	waitForActiveUsers(t, gateway, 0)

	// Last member gone, team-a was reclaimed and the id is free again.
	carol := dialClient(t, srv)
	carol.send(EventCheckRoom, "team-a")
	require.NoError(t, json.Unmarshal(carol.next("ack"), &exists))
	assert.False(t, exists.Exists)

	carol.send(EventCreateRoom, "team-a")
	assert.True(t, carol.nextAck().Success)
}

func joinPair(t *testing.T, srv *httptest.Server, roomID string) (alice, bob *testClient) {
	t.Helper()

	alice = dialClient(t, srv)
	alice.send(EventCreateRoom, roomID)
	require.True(t, alice.nextAck().Success)
	alice.send(EventJoinRoom, joinRoomRequest{Room: roomID, Username: "alice"})
	require.True(t, alice.nextAck().Success)

	bob = dialClient(t, srv)
	bob.send(EventJoinRoom, joinRoomRequest{Room: roomID, Username: "bob"})
	require.True(t, bob.nextAck().Success)

	// Drain the join-time presence pushes so later reads start clean.
	alice.nextActiveUsers()
	alice.nextActiveUsers()
	bob.nextActiveUsers()
	return alice, bob
}

func TestChatBroadcastIncludesSender(t *testing.T) {
	srv, _ := newTestServer(t)
	alice, bob := joinPair(t, srv, "team-a")

	alice.send(EventSendMessage, chatMessage{Room: "team-a", User: "alice", Message: "hello"})

	for _, c := range []*testClient{alice, bob} {
		var got receiveMessage
		require.NoError(t, json.Unmarshal(c.next(EventReceiveMessage), &got))
		assert.Equal(t, "alice", got.User)
		assert.Equal(t, "hello", got.Message)
		assert.NotEmpty(t, got.Timestamp)
	}
}

func TestSignalingRelayExcludesSender(t *testing.T) {
	srv, _ := newTestServer(t)
	alice, bob := joinPair(t, srv, "team-a")

	sdp := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	alice.send(EventOffer, signalPayload{Room: "team-a", SDP: sdp})

	assert.JSONEq(t, string(sdp), string(bob.next(EventOffer)))

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 UDP 123 10.0.0.1 9 typ host"}`)
	bob.send(EventICECandidate, signalPayload{Room: "team-a", Candidate: candidate})

	// The very first frame alice sees after emitting her offer must be the
	// candidate. An offer echo would have been queued ahead of it.
	require.NoError(t, alice.conn.SetReadDeadline(time.Now().Add(time.Second*3)))
	msg := &websocketMessage{}
	require.NoError(t, alice.conn.ReadJSON(msg))
	assert.Equal(t, EventICECandidate, msg.Event, "sender received its own offer echo")
	assert.JSONEq(t, string(candidate), string(msg.Data))
}

func TestVideoRoomAnnounce(t *testing.T) {
	srv, _ := newTestServer(t)
	alice, bob := joinPair(t, srv, "team-a")

	bob.send(EventJoinVideoRoom, "team-a")

	var connID string
	require.NoError(t, json.Unmarshal(alice.next(EventUserConnected), &connID))
	assert.NotEmpty(t, connID)
}

func TestVideoOnlyCallFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// The call surface creates or checks the room and then goes straight to
	// join_video_room, join_room is never issued.
	alice := dialClient(t, srv)
	alice.send(EventCreateRoom, "standup")
	require.True(t, alice.nextAck().Success)
	alice.send(EventJoinVideoRoom, "standup")

	// Events on one channel are handled in order, the ack confirms the
	// video join landed before bob announces himself.
	alice.send(EventCheckRoom, "standup")
	var exists existsResponse
	require.NoError(t, json.Unmarshal(alice.next("ack"), &exists))
	require.True(t, exists.Exists)

	bob := dialClient(t, srv)
	bob.send(EventCheckRoom, "standup")
	require.NoError(t, json.Unmarshal(bob.next("ack"), &exists))
	require.True(t, exists.Exists)
	bob.send(EventJoinVideoRoom, "standup")

	var connID string
	require.NoError(t, json.Unmarshal(alice.next(EventUserConnected), &connID))
	assert.NotEmpty(t, connID)

	sdp := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	alice.send(EventOffer, signalPayload{Room: "standup", SDP: sdp})
	assert.JSONEq(t, string(sdp), string(bob.next(EventOffer)))

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	bob.send(EventAnswer, signalPayload{Room: "standup", SDP: answer})
	assert.JSONEq(t, string(answer), string(alice.next(EventAnswer)))
}

func TestPresencePublishOrderUnderConcurrentJoins(t *testing.T) {
	srv, _ := newTestServer(t)

	monitor := dialClient(t, srv)
	monitor.send(EventCreateRoom, "team-a")
	require.True(t, monitor.nextAck().Success)
	monitor.send(EventJoinRoom, joinRoomRequest{Room: "team-a", Username: "user-0"})
	require.True(t, monitor.nextAck().Success)
	assert.Equal(t, []string{"user-0"}, monitor.nextActiveUsers())

	const joiners = 4
	clients := make([]*testClient, joiners)
	for i := range clients {
		clients[i] = dialClient(t, srv)
	}

	errCh := make(chan error, joiners)
	for i, c := range clients {
		go func(i int, c *testClient) {
			raw, err := json.Marshal(joinRoomRequest{Room: "team-a", Username: fmt.Sprintf("user-%d", i+1)})
			if err != nil {
				errCh <- err
				return
			}
			errCh <- c.conn.WriteJSON(&websocketMessage{Event: EventJoinRoom, Data: raw})
		}(i, c)
	}
	for range clients {
		require.NoError(t, <-errCh)
	}

	want := []string{"user-0", "user-1", "user-2", "user-3", "user-4"}
	var last []string
	for len(last) < len(want) {
		last = monitor.nextActiveUsers()
	}
	assert.Equal(t, want, last)

	// Snapshots are published under the gateway mutex, so the complete one
	// is the final frame. A stale smaller snapshot queued behind it would
	// surface here instead of the timeout.
	require.NoError(t, monitor.conn.SetReadDeadline(time.Now().Add(time.Millisecond*300)))
	msg := &websocketMessage{}
	err := monitor.conn.ReadJSON(msg)
	require.Error(t, err, "frame after the complete snapshot: %s %s", msg.Event, msg.Data)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestRelayToUnknownRoomIsSilent(t *testing.T) {
	srv, _ := newTestServer(t)
	alice, _ := joinPair(t, srv, "team-a")

	// Nobody is in ghost, delivery goes nowhere and nothing breaks.
	alice.send(EventOffer, signalPayload{Room: "ghost", SDP: json.RawMessage(`{"type":"offer"}`)})

	alice.send(EventCheckRoom, "team-a")
	var exists existsResponse
	require.NoError(t, json.Unmarshal(alice.next("ack"), &exists))
	assert.True(t, exists.Exists)
}
