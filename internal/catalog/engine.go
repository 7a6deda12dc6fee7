// Package catalog holds the client-side product list: paged fetching with
// cancellation, the filter/sort stage over the fetched list, the scroll
// trigger and the search debouncer.
package catalog

import (
	"context"
	"sync"

	"techhub/internal/domain"
	applog "techhub/internal/log"
)

const (
	DefaultPageSize = 10

	// PlaceholderImage replaces product images that failed to load.
	PlaceholderImage = "https://loremflickr.com/300/300/technology?lock=999"
)

// Fetcher is the network side of the engine.
type Fetcher interface {
	FetchProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error)
}

// State is a snapshot of the engine. Products is a copy.
type State struct {
	Products []domain.Product
	Page     int
	Search   string
	Category domain.Category
	Total    int

	Loading     bool // initial load in flight
	LoadingMore bool
	Loaded      bool // the initial load for the current query succeeded
	Exhausted   bool

	// Err is the last non-cancellation failure. Blocking is set only when
	// it came from an initial load.
	Err      error
	Blocking bool
}

type Engine struct {
	fetch    Fetcher
	pageSize int
	changed  chan struct{}

	mu        sync.Mutex
	products  []domain.Product
	page      int
	search    string
	category  domain.Category
	total     int
	loading   bool
	more      bool
	loaded    bool
	exhausted bool
	err       error
	blocking  bool

	qty    map[int64]int
	failed map[int64]bool

	version uint64

	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Engine)

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithQuery sets the initial search text and category.
func WithQuery(search string, category domain.Category) Option {
	return func(e *Engine) { e.search, e.category = search, category }
}

func NewEngine(f Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetch:    f,
		pageSize: DefaultPageSize,
		changed:  make(chan struct{}, 1),
		qty:      map[int64]int{},
		failed:   map[int64]bool{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func closedChan() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

// Start runs the initial load for the current query.
func (e *Engine) Start() <-chan struct{} { return e.Load(0, true) }

// Retry re-runs the initial query from page 0 and forgets broken images.
func (e *Engine) Retry() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = map[int64]bool{}
	return e.startLocked(0, true)
}

// SetQuery resets the cursor and exhaustion flag and starts a fresh initial
// load. Unchanged parameters are a no-op.
func (e *Engine) SetQuery(search string, category domain.Category) <-chan struct{} {
	e.mu.Lock()
	if search == e.search && category == e.category && (e.loaded || e.loading) {
		e.mu.Unlock()
		return closedChan()
	}
	e.search, e.category = search, category
	e.mu.Unlock()
	return e.Load(0, true)
}

// Load fetches page for the current query, cancelling whatever request is
// outstanding. An initial load replaces the list; otherwise the page is
// appended. The returned channel is closed once the outcome is applied or
// discarded.
func (e *Engine) Load(page int, initial bool) <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked(page, initial)
}

// LoadNextPage requests the page after the cursor unless a fetch is in
// flight, the list is exhausted or the initial load has not completed.
func (e *Engine) LoadNextPage() (<-chan struct{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading || e.more || e.exhausted || !e.loaded || e.closed {
		return nil, false
	}
	return e.startLocked(e.page+1, false), true
}

func (e *Engine) startLocked(page int, initial bool) <-chan struct{} {
	if e.closed {
		return closedChan()
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	q := domain.ProductQuery{Search: e.search, Category: e.category, Page: page, Limit: e.pageSize}
	if initial {
		e.products = nil
		e.page = 0
		e.total = 0
		e.loaded = false
		e.exhausted = false
		e.loading = true
		e.more = false
	} else {
		e.more = true
	}
	e.err = nil
	e.blocking = false

	done := make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(done)
		defer cancel()
		res, err := e.fetch.FetchProducts(ctx, q)
		e.finish(ctx, gen, q, initial, res, err)
	}()
	e.notifyLocked()
	return done
}

func (e *Engine) finish(ctx context.Context, gen uint64, q domain.ProductQuery, initial bool, res domain.ProductPage, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || ctx.Err() != nil {
		return
	}
	e.cancel = nil
	e.loading = false
	e.more = false

	if err != nil {
		e.err = err
		if initial {
			e.blocking = true
			applog.Error(nil, "catalog.load.fail", err, map[string]any{"search": q.Search, "category": string(q.Category)})
		} else {
			applog.Warn("catalog.load_more.fail", err, map[string]any{"page": q.Page})
		}
		e.notifyLocked()
		return
	}

	fresh := make([]domain.Product, len(res.Products))
	for i, p := range res.Products {
		p.InCart = e.qty[p.ID]
		p.ImageFailed = e.failed[p.ID]
		fresh[i] = p
	}
	if initial {
		e.products = fresh
		e.loaded = true
	} else {
		e.products = append(e.products, fresh...)
	}
	e.page = q.Page
	e.total = res.Total
	e.exhausted = !res.More(q)
	e.notifyLocked()
}

func (e *Engine) notifyLocked() {
	e.version++
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// Changed receives a value after state changes. Several changes may collapse
// into one signal; read State for the current values.
func (e *Engine) Changed() <-chan struct{} { return e.changed }

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		Products:    append([]domain.Product(nil), e.products...),
		Page:        e.page,
		Search:      e.search,
		Category:    e.category,
		Total:       e.total,
		Loading:     e.loading,
		LoadingMore: e.more,
		Loaded:      e.loaded,
		Exhausted:   e.exhausted,
		Err:         e.err,
		Blocking:    e.blocking,
	}
}

// ProductsSince returns a copy of the fetched list and the current version
// when anything changed after version v. ok is false otherwise.
func (e *Engine) ProductsSince(v uint64) (ps []domain.Product, version uint64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version == v {
		return nil, v, false
	}
	return append([]domain.Product(nil), e.products...), e.version, true
}

// BlockingError is the initial-load failure, if any.
func (e *Engine) BlockingError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.blocking {
		return e.err
	}
	return nil
}

// AdjustQuantity changes the local in-cart quantity of a product, clamped at
// zero, and returns the delta actually applied.
func (e *Engine) AdjustQuantity(productID int64, delta int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	old := e.qty[productID]
	next := old + delta
	if next < 0 {
		next = 0
	}
	e.setQtyLocked(productID, next)
	e.notifyLocked()
	return next - old
}

func (e *Engine) setQtyLocked(productID int64, n int) {
	if n == 0 {
		delete(e.qty, productID)
	} else {
		e.qty[productID] = n
	}
	for i := range e.products {
		if e.products[i].ID == productID {
			e.products[i].InCart = n
		}
	}
}

// Quantity is the local in-cart quantity of a product.
func (e *Engine) Quantity(productID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.qty[productID]
}

// SeedQuantities replaces local in-cart quantities with those of c.
func (e *Engine) SeedQuantities(c domain.Cart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.qty {
		e.setQtyLocked(id, 0)
	}
	for _, it := range c.Items {
		e.setQtyLocked(it.Product.ID, it.Quantity)
	}
	e.notifyLocked()
}

// MarkImageFailed records that a product image could not be loaded.
func (e *Engine) MarkImageFailed(productID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed[productID] = true
	for i := range e.products {
		if e.products[i].ID == productID {
			e.products[i].ImageFailed = true
		}
	}
	e.notifyLocked()
}

// ImageURL is the image to show for p.
func ImageURL(p domain.Product) string {
	if p.ImageFailed || p.ImageURL == "" {
		return PlaceholderImage
	}
	return p.ImageURL
}

// Close cancels the outstanding request and waits for background work.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
	e.wg.Wait()
}
