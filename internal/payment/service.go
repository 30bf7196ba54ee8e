package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/order"
)

type Service struct {
	repo Repository
	pub  events.Publisher
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewService(repo Repository, pub events.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, pub: pub, log: log, now: time.Now}
}

// Create pays an order in full. Validation happens before anything is
// written; a rejected payment leaves the order untouched.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest, actorID string) (*Payment, error) {
	p, err := NewPayment(req, actorID)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < order.MaxNumberAttempts; attempt++ {
		p.ReceiptNumber = order.NewNumber("RCP", s.now())
		if err = s.repo.Settle(ctx, p); !errors.Is(err, ErrReceiptTaken) {
			break
		}
		s.log.WithField("receipt_number", p.ReceiptNumber).Warn("receipt number collision, retrying")
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id":     p.ID,
		"order_id":       p.OrderID,
		"receipt_number": p.ReceiptNumber,
		"method":         p.Method,
		"amount":         p.Amount.String(),
	}).Info("payment recorded")
	events.Notify(ctx, s.pub, s.log, events.New(events.OrderPaid, p.ShopID, p))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]Payment, int, error) {
	if q.Method != "" && !Method(q.Method).Valid() {
		return nil, 0, apperr.BadRequest("invalid payment_method %q", q.Method)
	}
	return s.repo.List(ctx, q)
}

func (s *Service) ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]Payment, int, error) {
	return s.repo.List(ctx, Query{OrderID: orderID, Limit: limit, Offset: offset})
}
