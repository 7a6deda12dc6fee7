// Package cart applies quantity changes optimistically and reconciles them
// with the server cart.
package cart

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"techhub/internal/apiclient"
	"techhub/internal/domain"
	applog "techhub/internal/log"
)

// NoticeTTL is how long a failure notice stays visible.
const NoticeTTL = 6 * time.Second

type API interface {
	AddToCart(ctx context.Context, productID int64, delta int) (domain.Cart, error)
	GetCart(ctx context.Context) (domain.Cart, error)
}

// Quantities holds the locally displayed in-cart quantity per product.
// AdjustQuantity returns the delta actually applied after clamping.
type Quantities interface {
	AdjustQuantity(productID int64, delta int) int
}

type NoticeKind int

const (
	NoticeRejected NoticeKind = iota + 1 // the server answered non-2xx
	NoticeNetwork                        // the server was not reached
)

type Notice struct {
	ID        int
	Kind      NoticeKind
	ProductID int64
	Message   string
	Err       error
	Expires   time.Time
}

type Mutator struct {
	api   API
	local Quantities
	now   func() time.Time

	mu      sync.Mutex
	cart    domain.Cart
	notices []Notice
	lastID  int

	refresh singleflight.Group
}

type Option func(*Mutator)

func WithClock(now func() time.Time) Option { return func(m *Mutator) { m.now = now } }

func NewMutator(api API, local Quantities, opts ...Option) *Mutator {
	m := &Mutator{api: api, local: local, now: time.Now, cart: domain.NewCart(nil)}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AddToCart adjusts the local quantity first, then persists the delta. On
// success the server cart replaces local state; on failure exactly the
// applied delta is reversed and a notice is queued. The request is not
// cancelled with ctx.
func (m *Mutator) AddToCart(ctx context.Context, productID int64, delta int) (domain.Cart, error) {
	applied := m.local.AdjustQuantity(productID, delta)

	c, err := m.api.AddToCart(context.WithoutCancel(ctx), productID, delta)
	if err != nil {
		m.local.AdjustQuantity(productID, -applied)
		kind, msg := NoticeNetwork, "Network error"
		if apiclient.IsRejection(err) {
			kind, msg = NoticeRejected, "Failed to update cart"
		}
		m.notify(Notice{Kind: kind, ProductID: productID, Message: msg, Err: err})
		applog.Warn("cart.rollback", err, map[string]any{"product_id": productID, "delta": delta, "applied": applied})
		return domain.Cart{}, err
	}

	m.mu.Lock()
	m.cart = c
	m.mu.Unlock()
	return c, nil
}

// Refresh loads the server cart. Concurrent callers share one request, which
// is not cancelled with any single caller; each caller stops waiting when its
// own ctx is done.
func (m *Mutator) Refresh(ctx context.Context) (domain.Cart, error) {
	ch := m.refresh.DoChan("cart", func() (any, error) {
		c, err := m.api.GetCart(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cart = c
		m.mu.Unlock()
		return c, nil
	})
	select {
	case <-ctx.Done():
		return domain.Cart{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return domain.Cart{}, r.Err
		}
		return r.Val.(domain.Cart).Clone(), nil
	}
}

// Cart returns the last server-confirmed cart.
func (m *Mutator) Cart() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

// Reset empties the local cart after an order was accepted.
func (m *Mutator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = domain.NewCart(nil)
}

func (m *Mutator) notify(n Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	n.ID = m.lastID
	n.Expires = m.now().Add(NoticeTTL)
	m.notices = append(m.notices, n)
}

// Notices returns the notices that have not yet expired.
func (m *Mutator) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	live := m.notices[:0]
	for _, n := range m.notices {
		if now.Before(n.Expires) {
			live = append(live, n)
		}
	}
	m.notices = live
	return append([]Notice(nil), live...)
}

// Dismiss removes a notice before it expires.
func (m *Mutator) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notices {
		if n.ID == id {
			m.notices = append(m.notices[:i], m.notices[i+1:]...)
			return
		}
	}
}
