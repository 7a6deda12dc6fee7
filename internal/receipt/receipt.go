// Package receipt renders an order record as a standalone HTML page.
package receipt

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"techhub/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

type Renderer struct {
	engine *html.Engine
}

func New() (*Renderer, error) {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return domain.Money(d) })
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load receipt templates: %w", err)
	}
	return &Renderer{engine: engine}, nil
}

type line struct {
	Name      string
	Quantity  int
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

// Render writes the receipt for rec to w. All values are HTML-escaped.
func (r *Renderer) Render(w io.Writer, rec domain.OrderRecord) error {
	lines := make([]line, len(rec.Cart.Items))
	for i, it := range rec.Cart.Items {
		lines[i] = line{Name: it.Product.Name, Quantity: it.Quantity, Price: it.Product.Price, LineTotal: it.LineTotal()}
	}
	return r.engine.Render(w, "receipt", map[string]any{
		"OrderID":  rec.OrderID,
		"Date":     rec.OrderDate.Format("Jan 2, 2006 15:04 MST"),
		"Lines":    lines,
		"Shipping": rec.ShippingData,
		"Delivery": rec.ShippingData.DeliveryTime.Label(),
		"Payment":  rec.PaymentData.Method.Label(),
		"Card":     rec.PaymentData.CardNumber,
		"Subtotal": rec.Subtotal,
		"Tax":      rec.Tax,
		"Total":    rec.Total,
	})
}
