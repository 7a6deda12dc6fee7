package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is a value: mutations build a new Cart instead of editing one in place.
type Cart struct {
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalItems int             `json:"totalItems"`
}

// NewCart builds a cart from items, dropping non-positive quantities and
// computing totals.
func NewCart(items []CartItem) Cart {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return Cart{Items: out}.Recompute()
}

// Recompute returns a copy with totals derived from the items.
func (c Cart) Recompute() Cart {
	n := c.Clone()
	n.TotalPrice = decimal.Zero
	n.TotalItems = 0
	for _, it := range n.Items {
		n.TotalPrice = n.TotalPrice.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		n.TotalItems += it.Quantity
	}
	return n
}

func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, TotalPrice: c.TotalPrice, TotalItems: c.TotalItems}
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Quantity returns how many units of productID the cart holds.
func (c Cart) Quantity(productID int64) int {
	for _, it := range c.Items {
		if it.Product.ID == productID {
			return it.Quantity
		}
	}
	return 0
}

func (c Cart) Tax() decimal.Decimal { return Tax(c.TotalPrice) }

func (c Cart) Total() decimal.Decimal { return c.TotalPrice.Add(c.Tax()) }

// LineTotal is price × quantity for one item.
func (it CartItem) LineTotal() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
