package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techhub/internal/checkout"
	"techhub/internal/domain"
	"techhub/internal/storage"
	"techhub/internal/validate"
)

type liveCart struct {
	mu sync.Mutex
	c  domain.Cart
}

func (l *liveCart) Cart() domain.Cart {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Clone()
}

func (l *liveCart) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c = domain.NewCart(nil)
}

type call struct {
	req domain.OrderRequest
	key string
}

// scriptedPlacer fails the first n calls.
type scriptedPlacer struct {
	mu    sync.Mutex
	fails int
	calls []call
}

func (p *scriptedPlacer) PlaceOrder(_ context.Context, req domain.OrderRequest, key string) (domain.OrderReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{req, key})
	if len(p.calls) <= p.fails {
		return domain.OrderReceipt{}, errors.New("status 500")
	}
	return domain.OrderReceipt{OrderID: "ord-1"}, nil
}

func hundredDollarCart() *liveCart {
	return &liveCart{c: domain.NewCart([]domain.CartItem{
		{Product: domain.Product{ID: 1, Name: "Nova Phone", Price: decimal.RequireFromString("40.00")}, Quantity: 2},
		{Product: domain.Product{ID: 2, Name: "Pulse Buds", Price: decimal.RequireFromString("20.00")}, Quantity: 1},
	})}
}

var shipping = domain.ShippingData{
	Name: "Grace Hopper", Address: "1 Harbor Rd", City: "Arlington",
	Postal: "22201", Phone: "555-0100", DeliveryTime: domain.DeliveryStandard,
}

var card = domain.PaymentData{
	Method: domain.PaymentCard, CardNumber: "4111 1111 1111 1111",
	CardName: "G HOPPER", CardExpiry: "09/28", CardCVV: "123",
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("placement did not finish")
	}
}

func toPayment(t *testing.T, m *checkout.Machine) {
	t.Helper()
	require.NoError(t, m.Next())
	require.NoError(t, m.SubmitShipping(context.Background(), shipping))
	require.Equal(t, checkout.StepPayment, m.Step())
}

func TestCartStepTotals(t *testing.T) {
	m, err := checkout.New(context.Background(), &scriptedPlacer{}, storage.NewMemoryStore(), hundredDollarCart())
	require.NoError(t, err)

	s := m.Summary()
	assert.Equal(t, "100.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", s.Tax.StringFixed(2))
	assert.Equal(t, "110.00", s.Total.StringFixed(2))
}

func TestEmptyCartCannotAdvance(t *testing.T) {
	m, err := checkout.New(context.Background(), &scriptedPlacer{}, storage.NewMemoryStore(), &liveCart{c: domain.NewCart(nil)})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Next(), checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StepCart, m.Step())
}

func TestGuardedTransitions(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m, err := checkout.New(ctx, &scriptedPlacer{}, store, hundredDollarCart())
	require.NoError(t, err)

	assert.ErrorIs(t, m.Back(), checkout.ErrIllegalTransition)
	assert.ErrorIs(t, m.SubmitShipping(ctx, shipping), checkout.ErrIllegalTransition)
	require.NoError(t, m.Next())

	bad := shipping
	bad.Phone = ""
	bad.DeliveryTime = "teleport"
	err = m.SubmitShipping(ctx, bad)
	var fe validate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "phone")
	assert.Contains(t, fe, "deliveryTime")
	assert.Equal(t, checkout.StepShipping, m.Step())
	_, err = store.Get(ctx, storage.KeyShippingData)
	assert.ErrorIs(t, err, storage.ErrNotFound, "invalid data is never persisted")

	require.NoError(t, m.SubmitShipping(ctx, shipping))
	_, err = m.SubmitPayment(domain.PaymentData{Method: domain.PaymentCard, CardNumber: "4111 1111", CardExpiry: "1/28", CardCVV: "12"})
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 4)
	assert.Equal(t, checkout.StepPayment, m.Step())

	require.NoError(t, m.Back())
	assert.Equal(t, checkout.StepShipping, m.Step())
	assert.Equal(t, shipping, m.Shipping())
}

func TestShippingSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	first, err := checkout.New(ctx, &scriptedPlacer{}, store, hundredDollarCart())
	require.NoError(t, err)
	toPayment(t, first)

	second, err := checkout.New(ctx, &scriptedPlacer{}, store, hundredDollarCart())
	require.NoError(t, err)
	assert.Equal(t, shipping, second.Shipping())
	assert.Equal(t, checkout.StepCart, second.Step())
}

func TestRetryAppendsExactlyOneRecord(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	live := hundredDollarCart()
	placer := &scriptedPlacer{fails: 1}
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	m, err := checkout.New(ctx, placer, store, live, checkout.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	toPayment(t, m)

	done, err := m.SubmitPayment(card)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepConfirmation, m.Step())
	wait(t, done)

	s := m.Summary()
	assert.Equal(t, checkout.StatusFailed, s.Status)
	assert.Error(t, s.Err)
	hist, err := checkout.LoadHistory(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, hist)
	assert.False(t, live.Cart().IsEmpty())
	assert.ErrorIs(t, m.Back(), checkout.ErrIllegalTransition)

	done, err = m.Retry()
	require.NoError(t, err)
	wait(t, done)

	s = m.Summary()
	assert.Equal(t, checkout.StatusSucceeded, s.Status)
	assert.Equal(t, "ord-1", s.OrderID)
	assert.Equal(t, "110.00", s.Total.StringFixed(2), "confirmation keeps the captured cart")
	assert.Len(t, s.Items, 2)
	assert.Equal(t, "Credit/Debit Card", s.PaymentLabel)
	assert.True(t, m.Done())

	require.Len(t, placer.calls, 2)
	assert.Equal(t, placer.calls[0].key, placer.calls[1].key)
	assert.Equal(t, placer.calls[0].req, placer.calls[1].req)

	hist, err = checkout.LoadHistory(ctx, store)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "ord-1", hist[0].OrderID)
	assert.Equal(t, "************1111", hist[0].PaymentData.CardNumber)
	assert.Empty(t, hist[0].PaymentData.CardCVV)
	assert.True(t, hist[0].OrderDate.Equal(now))
	assert.Equal(t, "100.00", hist[0].Subtotal.StringFixed(2))

	assert.True(t, live.Cart().IsEmpty())
	_, err = store.Get(ctx, storage.KeyShippingData)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = m.Retry()
	assert.ErrorIs(t, err, checkout.ErrIllegalTransition)
}

func TestHistoryIsCappedNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for i := 0; i < 12; i++ {
		require.NoError(t, checkout.AppendHistory(ctx, store, domain.OrderRecord{OrderID: string(rune('a' + i))}))
	}
	hist, err := checkout.LoadHistory(ctx, store)
	require.NoError(t, err)
	require.Len(t, hist, checkout.HistoryLimit)
	assert.Equal(t, "l", hist[0].OrderID)
	assert.Equal(t, "c", hist[9].OrderID)
}

func TestCashNeedsNoCardFields(t *testing.T) {
	m, err := checkout.New(context.Background(), &scriptedPlacer{}, storage.NewMemoryStore(), hundredDollarCart())
	require.NoError(t, err)
	toPayment(t, m)
	done, err := m.SubmitPayment(domain.PaymentData{Method: domain.PaymentCash})
	require.NoError(t, err)
	wait(t, done)
	m.Close()
	assert.Equal(t, "Cash on Delivery", m.Summary().PaymentLabel)
}

func TestStatusAndStepNames(t *testing.T) {
	assert.Equal(t, "processing", checkout.StatusProcessing.String())
	assert.Equal(t, "failed", checkout.StatusFailed.String())
	assert.Equal(t, "status(9)", checkout.Status(9).String())
	assert.Equal(t, "status(-1)", checkout.Status(-1).String())
	assert.Equal(t, "step(7)", checkout.Step(7).String())
}
