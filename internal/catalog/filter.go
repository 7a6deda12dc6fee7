package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"techhub/internal/domain"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortName      SortKey = "name"
	SortNameDesc  SortKey = "name-desc"
	SortPrice     SortKey = "price"
	SortPriceDesc SortKey = "price-desc"
)

var (
	DefaultMinPrice = decimal.Zero
	DefaultMaxPrice = decimal.NewFromInt(9999)
)

// Filter is an inclusive price range plus a sort key.
type Filter struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Sort SortKey
}

func DefaultFilter() Filter {
	return Filter{Min: DefaultMinPrice, Max: DefaultMaxPrice}
}

// Active reports whether the price range narrows the defaults.
func (f Filter) Active() bool {
	return f.Min.GreaterThan(DefaultMinPrice) || f.Max.LessThan(DefaultMaxPrice)
}

// ParsePriceRange reads form values; blank or malformed bounds fall back to
// the defaults.
func ParsePriceRange(minS, maxS string) (decimal.Decimal, decimal.Decimal) {
	parse := func(s string, def decimal.Decimal) decimal.Decimal {
		s = strings.TrimSpace(s)
		if s == "" {
			return def
		}
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			return def
		}
		return d
	}
	return parse(minS, DefaultMinPrice), parse(maxS, DefaultMaxPrice)
}

// Apply returns the products inside the price range, sorted by f.Sort. The
// input is never modified; ties keep their original order. c may be nil, in
// which case names compare under English collation.
func Apply(products []domain.Product, f Filter, c *collate.Collator) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Price.LessThan(f.Min) || p.Price.GreaterThan(f.Max) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortName, SortNameDesc:
		if c == nil {
			c = collate.New(language.English)
		}
		sign := 1
		if f.Sort == SortNameDesc {
			sign = -1
		}
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return sign * c.CompareString(a.Name, b.Name)
		})
	case SortPrice:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	}
	return out
}

// Stage caches the filtered view and recomputes it only when the product
// list or filter changed since the last read.
type Stage struct {
	mu       sync.Mutex
	coll     *collate.Collator
	products []domain.Product
	filter   Filter
	view     []domain.Product
	dirty    bool
}

func NewStage(tag language.Tag) *Stage {
	return &Stage{coll: collate.New(tag), filter: DefaultFilter(), dirty: true}
}

func (s *Stage) SetProducts(ps []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = ps
	s.dirty = true
}

func (s *Stage) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Min.Equal(s.filter.Min) && f.Max.Equal(s.filter.Max) && f.Sort == s.filter.Sort {
		return
	}
	s.filter = f
	s.dirty = true
}

func (s *Stage) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// View returns the derived list. Callers must not modify it.
func (s *Stage) View() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.view = Apply(s.products, s.filter, s.coll)
		s.dirty = false
	}
	return s.view
}

// Count is the number of products in the current view.
func (s *Stage) Count() int { return len(s.View()) }
