package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/order"
)

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(CreatePaymentRequest{OrderID: "o", Method: MethodCash, Amount: *dp("69000"), ReceivedAmount: dp("100000")}, "")
	require.NoError(t, err)
	assert.Equal(t, "31000", p.ChangeAmount.String())
	assert.Equal(t, StatusCompleted, p.Status)

	p, err = NewPayment(CreatePaymentRequest{OrderID: "o", Method: MethodCash, Amount: *dp("69000")}, "")
	require.NoError(t, err)
	assert.True(t, p.ReceivedAmount.Valid)
	assert.True(t, p.ChangeAmount.IsZero())

	p, err = NewPayment(CreatePaymentRequest{OrderID: "o", Method: MethodCard, Amount: *dp("69000")}, "")
	require.NoError(t, err)
	assert.False(t, p.ReceivedAmount.Valid)

	_, err = NewPayment(CreatePaymentRequest{OrderID: "o", Method: MethodCash, Amount: *dp("69000"), ReceivedAmount: dp("50000")}, "")
	assert.ErrorIs(t, err, ErrInsufficientReceived)

	_, err = NewPayment(CreatePaymentRequest{OrderID: "o", Method: "cheque", Amount: *dp("1")}, "")
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))

	_, err = NewPayment(CreatePaymentRequest{OrderID: "o", Method: MethodCard, Amount: *dp("-1")}, "")
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
}

type memOrder struct {
	shopID string
	status order.Status
	paidAt *time.Time
}

// memRepo applies Settle atomically against in-memory orders.
type memRepo struct {
	orders     map[string]*memOrder
	payments   []Payment
	collisions int
}

func (m *memRepo) Settle(_ context.Context, p *Payment) error {
	o, ok := m.orders[p.OrderID]
	if !ok {
		return order.ErrNotFound
	}
	if err := order.CheckCancel(o.status); err != nil {
		return err
	}
	if m.collisions > 0 {
		m.collisions--
		return ErrReceiptTaken
	}
	p.ID = "pay-1"
	p.ShopID = o.shopID
	p.PaidAt = time.Now()
	o.status = order.StatusPaid
	o.paidAt = &p.PaidAt
	m.payments = append(m.payments, *p)
	return nil
}

func (m *memRepo) GetByID(context.Context, string) (*Payment, error) { return nil, ErrNotFound }
func (m *memRepo) List(_ context.Context, q Query) ([]Payment, int, error) {
	return m.payments, len(m.payments), nil
}

type recorder struct{ got []events.Event }

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.got = append(r.got, ev)
	return nil
}

func fixture() (*Service, *memRepo, *recorder) {
	repo := &memRepo{orders: map[string]*memOrder{
		"open":      {shopID: "shop-1", status: order.StatusServed},
		"paid":      {shopID: "shop-1", status: order.StatusPaid},
		"cancelled": {shopID: "shop-1", status: order.StatusCancelled},
	}}
	rec := &recorder{}
	log, _ := test.NewNullLogger()
	return NewService(repo, rec, log), repo, rec
}

func TestCreate_CashWithChange(t *testing.T) {
	svc, repo, rec := fixture()
	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		OrderID: "open", Method: MethodCash, Amount: *dp("69000"), ReceivedAmount: dp("70000"),
	}, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "1000", p.ChangeAmount.String())
	assert.Regexp(t, `^RCP-\d{14}-\d{4}$`, p.ReceiptNumber)
	assert.Equal(t, order.StatusPaid, repo.orders["open"].status)
	assert.NotNil(t, repo.orders["open"].paidAt)
	require.Len(t, rec.got, 1)
	assert.Equal(t, events.OrderPaid, rec.got[0].Type)
	assert.Equal(t, "shop-1", rec.got[0].ShopID)
}

func TestCreate_ShortCashWritesNothing(t *testing.T) {
	svc, repo, rec := fixture()
	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		OrderID: "open", Method: MethodCash, Amount: *dp("69000"), ReceivedAmount: dp("60000"),
	}, "")
	assert.ErrorIs(t, err, ErrInsufficientReceived)
	assert.Empty(t, repo.payments)
	assert.Equal(t, order.StatusServed, repo.orders["open"].status)
	assert.Empty(t, rec.got)
}

func TestCreate_RejectsSettledOrders(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePaymentRequest{OrderID: "paid", Method: MethodCard, Amount: *dp("1")}, "")
	assert.ErrorIs(t, err, order.ErrAlreadyPaid)

	_, err = svc.Create(ctx, CreatePaymentRequest{OrderID: "cancelled", Method: MethodCard, Amount: *dp("1")}, "")
	assert.ErrorIs(t, err, order.ErrAlreadyCancelled)

	_, err = svc.Create(ctx, CreatePaymentRequest{OrderID: "ghost", Method: MethodCard, Amount: *dp("1")}, "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, repo.payments)
}

func TestCreate_RetriesReceiptCollision(t *testing.T) {
	svc, repo, _ := fixture()
	repo.collisions = 1
	_, err := svc.Create(context.Background(), CreatePaymentRequest{OrderID: "open", Method: MethodEWallet, Amount: *dp("5")}, "")
	require.NoError(t, err)
	assert.Len(t, repo.payments, 1)
}
