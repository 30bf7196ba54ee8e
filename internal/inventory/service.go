package inventory

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/events"
)

type Service struct {
	repo Repository
	pub  events.Publisher
	log  logrus.FieldLogger
}

func NewService(repo Repository, pub events.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, pub: pub, log: log}
}

// Create records a stock movement. A withdrawal larger than the current
// stock fails with ErrInsufficientStock and leaves the ingredient untouched.
func (s *Service) Create(ctx context.Context, req CreateTransactionRequest, actorID string) (*Transaction, error) {
	t, err := NewTransaction(req, actorID)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.Record(ctx, t)
	if err != nil {
		return nil, err
	}
	t.IngredientName = st.Name

	s.log.WithFields(logrus.Fields{
		"ingredient_id": t.IngredientID,
		"type":          t.Type,
		"quantity":      t.Quantity.String(),
		"stock_after":   t.StockAfter.String(),
	}).Info("inventory transaction recorded")

	if st.IsLow() {
		events.Notify(ctx, s.pub, s.log, events.New(events.LowStock, t.ShopID, st))
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]Transaction, int, error) {
	return s.repo.List(ctx, q)
}
