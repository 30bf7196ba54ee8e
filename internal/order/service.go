package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/seating"
)

type Service struct {
	repo     Repository
	shops    Shops
	products Products
	tables   Tables
	pub      events.Publisher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo Repository, shops Shops, products Products, tables Tables, pub events.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, shops: shops, products: products, tables: tables, pub: pub, log: log, now: time.Now}
}

// Create prices req against the shop's current rates and product prices and
// persists the order with its items atomically. Any missing reference
// aborts before anything is written.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, actorID string) (*Order, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	sh, err := s.shops.GetByID(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	if req.TableID != nil && *req.TableID != "" {
		if _, err := s.tableInShop(ctx, *req.TableID, sh.ID); err != nil {
			return nil, err
		}
	} else {
		req.TableID = nil
	}

	o := &Order{
		ShopID:       sh.ID,
		TableID:      req.TableID,
		Type:         req.Type,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       StatusPending,
		Notes:        strings.TrimSpace(req.Notes),
		Items:        make([]Item, 0, len(req.Items)),
	}
	if actorID != "" {
		o.CreatedBy = &actorID
	}

	subtotal := decimal.Zero
	for _, line := range req.Items {
		p, err := s.productInShop(ctx, line.ProductID, sh.ID)
		if err != nil {
			return nil, err
		}
		pid := p.ID
		it := Item{
			ProductID:       &pid,
			ProductName:     p.Name,
			ProductPrice:    p.Price,
			Quantity:        line.Quantity,
			UnitPrice:       p.Price,
			Subtotal:        LineSubtotal(p.Price, line.Quantity),
			SelectedOptions: line.SelectedOptions,
			Notes:           strings.TrimSpace(line.Notes),
			Status:          ItemPending,
		}
		subtotal = subtotal.Add(it.Subtotal)
		o.Items = append(o.Items, it)
	}

	delivery := decimal.Zero
	if req.DeliveryFee != nil {
		delivery = *req.DeliveryFee
	}
	t := ComputeTotals(subtotal, delivery, sh.VATRate, sh.ServiceFeeRate)
	o.Subtotal, o.DeliveryFee, o.VATAmount, o.ServiceFee, o.TotalAmount = t.Subtotal, t.DeliveryFee, t.VATAmount, t.ServiceFee, t.Total

	if err := s.insertWithNumber(ctx, o); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"shop_id":      o.ShopID,
		"total":        o.TotalAmount.String(),
	}).Info("order created")

	out, err := s.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	events.Notify(ctx, s.pub, s.log, events.New(events.OrderCreated, out.ShopID, out))
	return out, nil
}

func (s *Service) insertWithNumber(ctx context.Context, o *Order) error {
	var err error
	for attempt := 0; attempt < MaxNumberAttempts; attempt++ {
		o.OrderNumber = NewNumber("ORD", s.now())
		if err = s.repo.Create(ctx, o); !errors.Is(err, ErrNumberTaken) {
			return err
		}
		s.log.WithField("order_number", o.OrderNumber).Warn("order number collision, retrying")
	}
	return err
}

func validateCreate(req CreateOrderRequest) error {
	if !req.Type.Valid() {
		return apperr.BadRequest("invalid order_type %q", req.Type)
	}
	if len(req.Items) == 0 {
		return apperr.BadRequest("order must contain at least one item")
	}
	for i, it := range req.Items {
		if it.Quantity < 1 || it.Quantity > 999 {
			return apperr.BadRequest("items[%d]: quantity must be between 1 and 999", i)
		}
	}
	if req.DeliveryFee != nil && req.DeliveryFee.IsNegative() {
		return apperr.BadRequest("delivery_fee must be >= 0")
	}
	return nil
}

func (s *Service) productInShop(ctx context.Context, id, shopID string) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ShopID != shopID {
		return nil, product.ErrNotFound
	}
	if !p.IsAvailable {
		return nil, apperr.BadRequest("product %q is not available", p.Name)
	}
	return p, nil
}

func (s *Service) tableInShop(ctx context.Context, id, shopID string) (*seating.Table, error) {
	t, err := s.tables.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.ShopID != shopID {
		return nil, seating.ErrTableNotFound
	}
	return t, nil
}

// Get returns the order with its table, items and each item's current product.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TableID != nil {
		t, err := s.tables.GetTable(ctx, *o.TableID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		o.Table = t
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ProductID == nil {
			continue
		}
		p, err := s.products.GetByID(ctx, *it.ProductID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		it.Product = p
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, q Query) ([]Order, int, error) {
	if q.Status != "" && !Status(q.Status).Valid() {
		return nil, 0, apperr.BadRequest("invalid status %q", q.Status)
	}
	if q.Type != "" && !Type(q.Type).Valid() {
		return nil, 0, apperr.BadRequest("invalid order_type %q", q.Type)
	}
	return s.repo.List(ctx, q)
}

// Update merges the descriptive fields. Items and totals are left untouched.
func (s *Service) Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TableID != nil {
		if *req.TableID == "" {
			o.TableID = nil
		} else {
			if _, err := s.tableInShop(ctx, *req.TableID, o.ShopID); err != nil {
				return nil, err
			}
			o.TableID = req.TableID
		}
	}
	if req.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.Notes != nil {
		o.Notes = strings.TrimSpace(*req.Notes)
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves the order to target. Moving to paid stamps paid_at;
// moving to cancelled follows the cancel rule.
func (s *Service) UpdateStatus(ctx context.Context, id string, target Status, actorID string) (*Order, error) {
	if !target.Valid() {
		return nil, apperr.BadRequest("invalid status %q", target)
	}
	o, err := s.repo.SetStatus(ctx, id, StatusChange{Target: target, ActorID: actorID}, func(current Status) error {
		return CheckTransition(current, target)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "status": target}).Info("order status changed")

	typ := events.OrderStatusChanged
	switch target {
	case StatusCancelled:
		typ = events.OrderCancelled
	case StatusPaid:
		typ = events.OrderPaid
	}
	events.Notify(ctx, s.pub, s.log, events.New(typ, o.ShopID, o))
	return o, nil
}

// Cancel cancels an order that is neither paid nor already cancelled.
func (s *Service) Cancel(ctx context.Context, id, reason, actorID string) (*Order, error) {
	o, err := s.repo.SetStatus(ctx, id, StatusChange{
		Target:  StatusCancelled,
		Reason:  strings.TrimSpace(reason),
		ActorID: actorID,
	}, CheckCancel)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "reason": reason}).Info("order cancelled")
	events.Notify(ctx, s.pub, s.log, events.New(events.OrderCancelled, o.ShopID, o))
	return o, nil
}

func (s *Service) Stats(ctx context.Context, q Query) (Stats, error) {
	return s.repo.Stats(ctx, q)
}
