package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryTime string

const (
	DeliveryStandard  DeliveryTime = "standard"
	DeliveryExpress   DeliveryTime = "express"
	DeliveryOvernight DeliveryTime = "overnight"
)

var DeliveryTimes = []DeliveryTime{DeliveryStandard, DeliveryExpress, DeliveryOvernight}

func (d DeliveryTime) Label() string {
	switch d {
	case DeliveryStandard:
		return "Standard (5-7 days)"
	case DeliveryExpress:
		return "Express (2-3 days)"
	case DeliveryOvernight:
		return "Overnight (1 day)"
	}
	return string(d)
}

type ShippingData struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	Postal       string       `json:"postal"`
	Phone        string       `json:"phone"`
	DeliveryTime DeliveryTime `json:"deliveryTime"`
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentCash   PaymentMethod = "cash"
)

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Credit/Debit Card"
	case PaymentPayPal:
		return "PayPal"
	case PaymentCash:
		return "Cash on Delivery"
	}
	return string(m)
}

type PaymentData struct {
	Method     PaymentMethod `json:"method"`
	CardNumber string        `json:"cardNumber,omitempty"`
	CardName   string        `json:"cardName,omitempty"`
	CardExpiry string        `json:"cardExpiry,omitempty"`
	CardCVV    string        `json:"cardCvv,omitempty"`
}

// Sanitized drops the CVV and masks all but the last four card digits.
func (p PaymentData) Sanitized() PaymentData {
	out := PaymentData{Method: p.Method, CardName: p.CardName, CardExpiry: p.CardExpiry}
	if p.Method != PaymentCard {
		return PaymentData{Method: p.Method}
	}
	digits := strings.Join(strings.Fields(p.CardNumber), "")
	if len(digits) > 4 {
		out.CardNumber = strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
	} else {
		out.CardNumber = digits
	}
	return out
}

// OrderRecord is the client-side snapshot kept in order history.
type OrderRecord struct {
	OrderID      string          `json:"orderId,omitempty"`
	Cart         Cart            `json:"cart"`
	ShippingData ShippingData    `json:"shippingData"`
	PaymentData  PaymentData     `json:"paymentData"`
	OrderDate    time.Time       `json:"orderDate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}
