package queue

import (
	"context"
	"sync"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

// InProc is a channel-backed queue for single-binary deployments and
// tests. It carries the same envelope encoding as the Kafka transport
// so both paths exercise the codec.
type InProc struct {
	once sync.Once
	ch   chan []byte
	done chan struct{}
}

// NewInProc creates an in-process queue with the given buffer size
func NewInProc(buffer int) *InProc {
	return &InProc{
		ch:   make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Publish encodes the event and enqueues it. Safe to call concurrently
// with Close: the data channel is never closed, shutdown is signalled
// on done, so a blocked send unblocks with an error instead of
// panicking.
func (q *InProc) Publish(ctx context.Context, ev event.Event) error {
	data, err := event.Encode(ev)
	if err != nil {
		return err
	}

	select {
	case <-q.done:
		return errors.Delivery("queue is closed", nil)
	default:
	}

	select {
	case q.ch <- data:
		return nil
	case <-q.done:
		return errors.Delivery("queue is closed", nil)
	case <-ctx.Done():
		return errors.Delivery("publish cancelled", ctx.Err())
	}
}

// Run decodes and handles queued events until the context is cancelled
// or the queue is closed and drained.
func (q *InProc) Run(ctx context.Context, h Handler) error {
	for {
		select {
		case data := <-q.ch:
			q.handle(ctx, data, h)
		case <-q.done:
			// Deliver whatever was enqueued before Close.
			for {
				select {
				case data := <-q.ch:
					q.handle(ctx, data, h)
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *InProc) handle(ctx context.Context, data []byte, h Handler) {
	ev, err := event.Decode(data)
	if err != nil {
		// Drop: an undecodable message cannot be redelivered usefully.
		return
	}
	// Handler errors are dropped too; the in-process queue has no
	// durable redelivery.
	_ = h(ctx, ev)
}

// Close stops accepting publishes and lets Run drain the remainder
func (q *InProc) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}

var (
	_ Producer = (*InProc)(nil)
	_ Consumer = (*InProc)(nil)
)
