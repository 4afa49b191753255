package eventsource

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

// wireEvent is the JSON frame this Source expects on the wire: one
// event per text message.
type wireEvent struct {
	ID  string `json:"id"`
	Arg any    `json:"arg,omitempty"`
}

// WebSocket is a Source that reads one JSON-encoded wireEvent per text
// message from a gorilla/websocket connection.
type WebSocket struct {
	conn *websocket.Conn
	ch   chan Event
}

// NewWebSocket wraps an already-dialed connection as a Source and
// starts reading from it immediately.
func NewWebSocket(conn *websocket.Conn) *WebSocket {
	w := &WebSocket{conn: conn, ch: make(chan Event)}
	go w.read()
	return w
}

func (w *WebSocket) read() {
	defer close(w.ch)
	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev wireEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		w.ch <- Event{ID: ev.ID, Arg: ev.Arg}
	}
}

// Pump drains decoded frames into sink until the connection closes.
func (w *WebSocket) Pump(ctx context.Context, sink Sink) error {
	return Pump(ctx, sink, w.ch)
}

// Close closes the underlying connection.
func (w *WebSocket) Close() error {
	return w.conn.Close()
}
