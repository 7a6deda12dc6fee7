// Package checkout drives the four-step checkout: cart review, shipping,
// payment and confirmation with order placement.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"techhub/internal/domain"
	applog "techhub/internal/log"
	"techhub/internal/storage"
	"techhub/internal/validate"
)

type Step int

const (
	StepCart Step = iota
	StepShipping
	StepPayment
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Status is the state of order placement on the confirmation step.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

var (
	ErrIllegalTransition = errors.New("checkout: illegal transition")
	ErrEmptyCart         = errors.New("checkout: cart is empty")
)

type Placer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest, key string) (domain.OrderReceipt, error)
}

// CartSource is the live cart owned by the caller.
type CartSource interface {
	Cart() domain.Cart
	Reset()
}

type Machine struct {
	placer Placer
	store  storage.Store
	cart   CartSource
	now    func() time.Time

	mu       sync.Mutex
	step     Step
	shipping domain.ShippingData
	payment  domain.PaymentData
	snapshot domain.Cart
	status   Status
	err      error
	key      string
	req      domain.OrderRequest
	orderID  string

	wg sync.WaitGroup
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

// New starts a checkout on the cart step. A shipping record persisted by an
// earlier session pre-fills the shipping form.
func New(ctx context.Context, placer Placer, store storage.Store, cart CartSource, opts ...Option) (*Machine, error) {
	m := &Machine{placer: placer, store: store, cart: cart, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	if _, err := storage.GetJSON(ctx, store, storage.KeyShippingData, &m.shipping); err != nil {
		return nil, fmt.Errorf("load shipping data: %w", err)
	}
	return m, nil
}

func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Shipping is the current shipping record, possibly pre-filled.
func (m *Machine) Shipping() domain.ShippingData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shipping
}

// Next leaves the cart step. The other steps advance through their submit
// methods.
func (m *Machine) Next() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepCart {
		return fmt.Errorf("%w: next from %s", ErrIllegalTransition, m.step)
	}
	if m.cart.Cart().IsEmpty() {
		return ErrEmptyCart
	}
	m.step = StepShipping
	return nil
}

func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.step {
	case StepShipping, StepPayment:
		m.step--
		return nil
	}
	return fmt.Errorf("%w: back from %s", ErrIllegalTransition, m.step)
}

// SubmitShipping validates d, persists it and moves to payment. Validation
// failures come back as validate.FieldErrors.
func (m *Machine) SubmitShipping(ctx context.Context, d domain.ShippingData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepShipping {
		return fmt.Errorf("%w: shipping from %s", ErrIllegalTransition, m.step)
	}
	if err := validate.Shipping(d).Err(); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, m.store, storage.KeyShippingData, d); err != nil {
		return fmt.Errorf("persist shipping data: %w", err)
	}
	m.shipping = d
	m.step = StepPayment
	return nil
}

// SubmitPayment validates p, captures the cart, moves to confirmation and
// starts order placement. The channel is closed when placement finishes.
func (m *Machine) SubmitPayment(p domain.PaymentData) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepPayment {
		return nil, fmt.Errorf("%w: payment from %s", ErrIllegalTransition, m.step)
	}
	if err := validate.Payment(p).Err(); err != nil {
		return nil, err
	}
	snap := m.cart.Cart()
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}

	m.payment = p
	m.snapshot = snap
	m.key = uuid.NewString()
	m.req = orderRequest(snap, m.shipping, p.Method)
	m.step = StepConfirmation
	return m.placeLocked(), nil
}

// Retry re-issues the failed placement with the same request and
// idempotency key.
func (m *Machine) Retry() (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepConfirmation || m.status != StatusFailed {
		return nil, fmt.Errorf("%w: retry while %s", ErrIllegalTransition, m.status)
	}
	return m.placeLocked(), nil
}

func orderRequest(c domain.Cart, s domain.ShippingData, method domain.PaymentMethod) domain.OrderRequest {
	lines := make([]domain.OrderLine, len(c.Items))
	for i, it := range c.Items {
		lines[i] = domain.OrderLine{ProductID: it.Product.ID, Quantity: it.Quantity}
	}
	return domain.OrderRequest{Items: lines, Shipping: s, PaymentMethod: method, Total: c.Total()}
}

func (m *Machine) placeLocked() <-chan struct{} {
	m.status = StatusProcessing
	m.err = nil
	req, key := m.req, m.key

	done := make(chan struct{})
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(done)
		// Placement is never cancelled once issued.
		ctx := context.Background()
		receipt, err := m.placer.PlaceOrder(ctx, req, key)
		if err != nil {
			applog.Error(nil, "order.place.fail", err, map[string]any{"idempotency_key": key})
			m.mu.Lock()
			m.status, m.err = StatusFailed, err
			m.mu.Unlock()
			return
		}
		m.complete(ctx, receipt)
	}()
	return done
}

func (m *Machine) complete(ctx context.Context, receipt domain.OrderReceipt) {
	m.mu.Lock()
	rec := domain.OrderRecord{
		OrderID:      receipt.OrderID,
		Cart:         m.snapshot.Clone(),
		ShippingData: m.shipping,
		PaymentData:  m.payment.Sanitized(),
		OrderDate:    m.now().UTC(),
		Subtotal:     m.snapshot.TotalPrice,
		Tax:          m.snapshot.Tax(),
		Total:        m.snapshot.Total(),
	}
	m.mu.Unlock()

	if err := AppendHistory(ctx, m.store, rec); err != nil {
		applog.Error(nil, "order.history.fail", err, map[string]any{"order_id": rec.OrderID})
	}
	if err := m.store.Remove(ctx, storage.KeyShippingData); err != nil {
		applog.Error(nil, "checkout.shipping.clear.fail", err, nil)
	}
	m.cart.Reset()
	applog.Audit(nil, "order.place", map[string]any{"order_id": rec.OrderID, "total": rec.Total.StringFixed(2)})

	m.mu.Lock()
	m.status = StatusSucceeded
	m.orderID = receipt.OrderID
	m.mu.Unlock()
}

// Summary is what the current step shows.
type Summary struct {
	Step         Step
	Status       Status
	Err          error
	OrderID      string
	Items        []domain.CartItem
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Shipping     domain.ShippingData
	PaymentLabel string
}

// Summary reads the live cart before payment and the captured snapshot
// afterwards, so confirmation totals survive the cart being cleared.
func (m *Machine) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.snapshot
	if m.step < StepConfirmation {
		c = m.cart.Cart()
	}
	s := Summary{
		Step:     m.step,
		Status:   m.status,
		Err:      m.err,
		OrderID:  m.orderID,
		Items:    append([]domain.CartItem(nil), c.Items...),
		Subtotal: c.TotalPrice,
		Tax:      c.Tax(),
		Total:    c.Total(),
		Shipping: m.shipping,
	}
	if m.payment.Method != "" {
		s.PaymentLabel = m.payment.Method.Label()
	}
	return s
}

// Done reports whether an order was accepted. A finished machine should be
// replaced on the next checkout.
func (m *Machine) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusSucceeded
}

// Close waits for an in-flight placement. State is kept.
func (m *Machine) Close() { m.wg.Wait() }
