// Package shop wires the catalog, cart and checkout around one API client
// and one durable store.
package shop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"techhub/internal/apiclient"
	"techhub/internal/cart"
	"techhub/internal/catalog"
	"techhub/internal/checkout"
	"techhub/internal/domain"
	applog "techhub/internal/log"
	"techhub/internal/storage"
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      storage.Store
	PageSize   int
	Locale     string
	// Query is the startup URL query, e.g. "q=phone&category=Audio".
	Query    string
	Debounce time.Duration
}

type Shop struct {
	Client  *apiclient.Client
	Store   storage.Store
	Catalog *catalog.Engine
	Stage   *catalog.Stage
	Trigger *catalog.Trigger
	Cart    *cart.Mutator

	search *catalog.Debouncer

	mu       sync.Mutex
	checkout *checkout.Machine
	seen     uint64
}

func New(ctx context.Context, o Options) (*Shop, error) {
	if o.Store == nil {
		o.Store = storage.NewMemoryStore()
	}
	sid, err := sessionID(ctx, o.Store)
	if err != nil {
		return nil, err
	}

	copts := []apiclient.Option{apiclient.WithSession(sid)}
	if o.HTTPClient != nil {
		copts = append(copts, apiclient.WithHTTPClient(o.HTTPClient))
	}
	client := apiclient.New(o.BaseURL, copts...)

	tag, err := language.Parse(o.Locale)
	if err != nil {
		tag = language.English
	}
	q, cat := catalog.ParseQueryString(o.Query)
	engine := catalog.NewEngine(client, catalog.WithPageSize(o.PageSize), catalog.WithQuery(q, cat))

	s := &Shop{
		Client:  client,
		Store:   o.Store,
		Catalog: engine,
		Stage:   catalog.NewStage(tag),
		Trigger: catalog.NewTrigger(engine),
		Cart:    cart.NewMutator(client, engine),
	}
	delay := o.Debounce
	if delay <= 0 {
		delay = catalog.DefaultDebounce
	}
	s.search = catalog.NewDebouncer(delay, func(text string) {
		s.Catalog.SetQuery(text, s.Catalog.State().Category)
	})
	return s, nil
}

// sessionID reuses the stored session so the server cart survives restarts.
func sessionID(ctx context.Context, st storage.Store) (string, error) {
	b, err := st.Get(ctx, storage.KeySessionID)
	if err == nil && len(b) > 0 {
		return string(b), nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("load session: %w", err)
	}
	sid := uuid.NewString()
	if err := st.Set(ctx, storage.KeySessionID, []byte(sid)); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return sid, nil
}

// Start loads the server cart into local quantities, then the first page.
// A cart failure is logged and does not stop the catalog.
func (s *Shop) Start(ctx context.Context) <-chan struct{} {
	if c, err := s.Cart.Refresh(ctx); err != nil {
		applog.Warn("cart.refresh.fail", err, nil)
	} else {
		s.Catalog.SeedQuantities(c)
	}
	return s.Catalog.Start()
}

// Search feeds raw input through the debouncer.
func (s *Shop) Search(text string) { s.search.Push(text) }

// SetCategory applies immediately; an empty category means all.
func (s *Shop) SetCategory(c domain.Category) <-chan struct{} {
	return s.Catalog.SetQuery(s.Catalog.State().Search, c)
}

// Products is the filtered, sorted view of everything fetched so far.
// The stage is refilled only when the engine changed since the last read.
func (s *Shop) Products() []domain.Product {
	s.mu.Lock()
	if ps, v, ok := s.Catalog.ProductsSince(s.seen); ok {
		s.Stage.SetProducts(ps)
		s.seen = v
	}
	s.mu.Unlock()
	return s.Stage.View()
}

// QueryString mirrors the current search state for the address bar.
func (s *Shop) QueryString() string {
	st := s.Catalog.State()
	return catalog.QueryString(st.Search, st.Category)
}

// OpenCheckout returns the open checkout, or a new one once an order has
// been accepted.
func (s *Shop) OpenCheckout(ctx context.Context) (*checkout.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout != nil && !s.checkout.Done() {
		return s.checkout, nil
	}
	m, err := checkout.New(ctx, s.Client, s.Store, s.Cart)
	if err != nil {
		return nil, err
	}
	s.checkout = m
	return m, nil
}

func (s *Shop) History(ctx context.Context) ([]domain.OrderRecord, error) {
	return checkout.LoadHistory(ctx, s.Store)
}

func (s *Shop) Close() {
	s.search.Stop()
	s.Catalog.Close()
	s.mu.Lock()
	m := s.checkout
	s.mu.Unlock()
	if m != nil {
		m.Close()
	}
}
