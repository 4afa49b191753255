package eventsource

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// NATS is a Source backed by a subscription on a NATS subject. Each
// message is decoded as the same wireEvent frame WebSocket uses.
type NATS struct {
	sub *nats.Subscription
	ch  chan Event
}

// NewNATS subscribes to subject on nc and starts decoding messages
// immediately.
func NewNATS(nc *nats.Conn, subject string) (*NATS, error) {
	ch := make(chan Event)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev wireEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		ch <- Event{ID: ev.ID, Arg: ev.Arg}
	})
	if err != nil {
		return nil, err
	}
	return &NATS{sub: sub, ch: ch}, nil
}

// Pump drains decoded messages into sink.
func (n *NATS) Pump(ctx context.Context, sink Sink) error {
	return Pump(ctx, sink, n.ch)
}

// Close unsubscribes from the NATS subject.
func (n *NATS) Close() error {
	return n.sub.Unsubscribe()
}
