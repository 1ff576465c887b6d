package wsutils

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ThreadSafeWriter serializes writes to a websocket connection. Reads are
// left unguarded, gorilla allows one concurrent reader already.
type ThreadSafeWriter struct {
	*websocket.Conn
	sync.Mutex
}

func (t *ThreadSafeWriter) WriteJSON(val interface{}) error {
	t.Lock()
	defer t.Unlock()

	return t.Conn.WriteJSON(val)
}

func (t *ThreadSafeWriter) Ping(deadline time.Time) error {
	t.Lock()
	defer t.Unlock()

	return t.Conn.WriteControl(websocket.PingMessage, nil, deadline)
}

func (t *ThreadSafeWriter) Close() error {
	return t.Conn.Close()
}

func (t *ThreadSafeWriter) ReadJSON(val any) error {
	return t.Conn.ReadJSON(val)
}

func NewThreadSafeWriter(conn *websocket.Conn) *ThreadSafeWriter {
	return &ThreadSafeWriter{
		Conn: conn,
	}
}
