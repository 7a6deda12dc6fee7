package catalog

import (
	"sync"
	"time"
)

// DefaultThreshold is the distance to the bottom, in pixels, that fires the
// next page.
const DefaultThreshold = 200

type pager interface {
	LoadNextPage() (<-chan struct{}, bool)
}

// Trigger turns scroll positions into next-page requests. The engine's
// in-flight gate keeps one crossing from firing twice.
type Trigger struct {
	Threshold float64
	pages     pager
}

func NewTrigger(p pager) *Trigger { return &Trigger{Threshold: DefaultThreshold, pages: p} }

// OnScroll reports a scroll position. It returns the page's done channel when
// a request was started.
func (t *Trigger) OnScroll(scrollTop, viewportHeight, contentHeight float64) (<-chan struct{}, bool) {
	if contentHeight-(scrollTop+viewportHeight) >= t.Threshold {
		return nil, false
	}
	return t.pages.LoadNextPage()
}

// DefaultDebounce is the quiet period applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer delivers the last pushed value once input has been quiet for the
// delay.
type Debouncer struct {
	delay time.Duration
	fn    func(string)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq
		d.mu.Unlock()
		if current {
			d.fn(v)
		}
	})
}

// Stop drops any pending value.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
