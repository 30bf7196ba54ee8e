// Package events carries domain events (orders, payments, stock) to
// interested parties: the message broker and the kitchen display hub.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	OrderCancelled     Type = "order.cancelled"
	OrderPaid          Type = "order.paid"
	LowStock           Type = "inventory.low_stock"
)

type Event struct {
	Type       Type      `json:"type"`
	ShopID     string    `json:"shop_id"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(t Type, shopID string, payload any) Event {
	return Event{Type: t, ShopID: shopID, Payload: payload, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins the failures.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notify publishes ev after a committed write. Delivery is best effort: the
// write already happened, so failures are logged and swallowed.
func Notify(ctx context.Context, p Publisher, log logrus.FieldLogger, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.WithFields(logrus.Fields{"event": ev.Type, "shop_id": ev.ShopID}).
			WithError(err).Warn("event publish failed")
	}
}
