package eventsource

import (
	"context"
	"time"
)

// Timer is a Source that emits a fixed event on a fixed period, useful
// for timeout and heartbeat transitions. Ticks are dropped, never
// queued, if the consumer isn't ready — a slow sink should not cause
// timer events to pile up and fire in a burst later.
type Timer struct {
	ch     chan Event
	ticker *time.Ticker
	done   chan struct{}
}

// NewTimer starts a Timer that emits eventID/arg every d until Stop is
// called.
func NewTimer(eventID string, arg any, d time.Duration) *Timer {
	t := &Timer{
		ch:     make(chan Event, 1),
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.run(eventID, arg)
	return t
}

func (t *Timer) run(eventID string, arg any) {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- Event{ID: eventID, Arg: arg}:
			default:
			}
		case <-t.done:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Pump drains the Timer's ticks into sink.
func (t *Timer) Pump(ctx context.Context, sink Sink) error {
	return Pump(ctx, sink, t.ch)
}

// Stop halts the ticker and closes the event channel.
func (t *Timer) Stop() {
	close(t.done)
}
