package domain

import "github.com/shopspring/decimal"

// ProductQuery is the parameter set of GET /products.
type ProductQuery struct {
	Search   string
	Category Category
	Page     int
	Limit    int
}

// ProductPage is the body of GET /products. HasMore is nil when the server
// omitted it.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	HasMore  *bool     `json:"hasMore,omitempty"`
}

// More reports whether another page exists after q.
func (p ProductPage) More(q ProductQuery) bool {
	if p.HasMore != nil {
		return *p.HasMore
	}
	return q.Page*q.Limit+q.Limit < p.Total
}

// CartMutation is the body of POST /cart. Quantity is a signed delta.
type CartMutation struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the optional body of POST /orders.
type OrderRequest struct {
	Items         []OrderLine     `json:"items"`
	Shipping      ShippingData    `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
}

type OrderReceipt struct {
	OrderID string `json:"orderId"`
}
