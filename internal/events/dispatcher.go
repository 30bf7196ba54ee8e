package events

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Dispatcher.Publish when the backlog is full.
var ErrQueueFull = errors.New("event queue full")

// Dispatcher moves delivery off the request path. Publish only enqueues;
// Run hands each event to the wrapped publisher with its own deadline.
type Dispatcher struct {
	next    Publisher
	queue   chan Event
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewDispatcher(next Publisher, size int, timeout time.Duration, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{next: next, queue: make(chan Event, size), timeout: timeout, log: log}
}

// Publish enqueues ev without blocking. ctx is ignored: delivery outlives
// the request that caused it.
func (d *Dispatcher) Publish(_ context.Context, ev Event) error {
	select {
	case d.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is cancelled, then flushes what is
// already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.flush()
			return nil
		case ev := <-d.queue:
			d.deliver(ev)
		}
	}
}

func (d *Dispatcher) flush() {
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.next.Publish(ctx, ev); err != nil {
		d.log.WithFields(logrus.Fields{"event": ev.Type, "shop_id": ev.ShopID}).
			WithError(err).Warn("event delivery failed")
	}
}

// Pending is the number of queued events.
func (d *Dispatcher) Pending() int { return len(d.queue) }
