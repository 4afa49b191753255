package eventsource

import "context"

// Pump delivers events to sink until events closes or ctx is done,
// whichever happens first. Each Source's own constructor starts
// whatever goroutine produces into its channel; Pump is the common
// drain loop every Source shares.
func Pump(ctx context.Context, sink Sink, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := sink.Fire(ev.ID, ev.Arg); err != nil {
				return err
			}
		}
	}
}

// Pump drains c's channel into sink. See the package-level Pump.
func (c *Channel) Pump(ctx context.Context, sink Sink) error {
	return Pump(ctx, sink, c.ch)
}
