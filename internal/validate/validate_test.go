package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"techhub/internal/domain"
	"techhub/internal/validate"
)

func goodShipping() domain.ShippingData {
	return domain.ShippingData{
		Name: "Ada Lovelace", Address: "12 St James's Square", City: "London",
		Postal: "SW1Y 4JH", Phone: "+44 20 0000 0000", DeliveryTime: domain.DeliveryExpress,
	}
}

func TestShippingRequiresAllSixFields(t *testing.T) {
	assert.Empty(t, validate.Shipping(goodShipping()))

	cases := map[string]func(*domain.ShippingData){
		"name":         func(d *domain.ShippingData) { d.Name = "  " },
		"address":      func(d *domain.ShippingData) { d.Address = "" },
		"city":         func(d *domain.ShippingData) { d.City = "" },
		"postal":       func(d *domain.ShippingData) { d.Postal = "" },
		"phone":        func(d *domain.ShippingData) { d.Phone = "" },
		"deliveryTime": func(d *domain.ShippingData) { d.DeliveryTime = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			d := goodShipping()
			mutate(&d)
			errs := validate.Shipping(d)
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, field)
		})
	}

	d := goodShipping()
	d.DeliveryTime = "teleport"
	assert.Contains(t, validate.Shipping(d), "deliveryTime")
}

func TestPaymentRules(t *testing.T) {
	card := domain.PaymentData{
		Method: domain.PaymentCard, CardNumber: "4111 1111 1111 1111",
		CardName: "Ada", CardExpiry: "09/27", CardCVV: "123",
	}
	assert.Empty(t, validate.Payment(card))
	assert.Empty(t, validate.Payment(domain.PaymentData{Method: domain.PaymentPayPal}))
	assert.Empty(t, validate.Payment(domain.PaymentData{Method: domain.PaymentCash}))
	assert.Contains(t, validate.Payment(domain.PaymentData{Method: "barter"}), "method")

	tests := []struct {
		name  string
		edit  func(*domain.PaymentData)
		field string
	}{
		{"short number", func(p *domain.PaymentData) { p.CardNumber = "4111 1111 1111 111" }, "cardNumber"},
		{"letters in number", func(p *domain.PaymentData) { p.CardNumber = "4111 1111 1111 111x" }, "cardNumber"},
		{"missing number", func(p *domain.PaymentData) { p.CardNumber = " " }, "cardNumber"},
		{"missing name", func(p *domain.PaymentData) { p.CardName = "" }, "cardName"},
		{"bad expiry", func(p *domain.PaymentData) { p.CardExpiry = "9/27" }, "cardExpiry"},
		{"expiry with year", func(p *domain.PaymentData) { p.CardExpiry = "09/2027" }, "cardExpiry"},
		{"short cvv", func(p *domain.PaymentData) { p.CardCVV = "12" }, "cardCvv"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := card
			tc.edit(&p)
			errs := validate.Payment(p)
			assert.Contains(t, errs, tc.field)
			assert.Error(t, errs.Err())
		})
	}
}

func TestQueryParams(t *testing.T) {
	q, ok := validate.Q("  phone ")
	assert.True(t, ok)
	assert.Equal(t, "phone", q)

	for _, in := range []string{"Charger, 65W", "USB-C Hub (x)", "stylus?", "a/b #1", "<b>", "écran"} {
		q, ok = validate.Q(in)
		assert.True(t, ok, in)
		assert.Equal(t, in, q)
	}
	_, ok = validate.Q(strings.Repeat("é", validate.MaxQueryRunes))
	assert.True(t, ok)
	_, ok = validate.Q(strings.Repeat("é", validate.MaxQueryRunes+1))
	assert.False(t, ok)
	_, ok = validate.Q("bad\xffbyte")
	assert.False(t, ok)

	_, ok = validate.Category("Toasters")
	assert.False(t, ok)
	c, ok := validate.Category("Audio")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryAudio, c)

	assert.Equal(t, 0, validate.Int("abc", 0))
	assert.Equal(t, 10, validate.Limit("0", 10))
	assert.Equal(t, 100, validate.Limit("5000", 10))
	assert.True(t, validate.Delta(-2))
	assert.False(t, validate.Delta(0))
	assert.False(t, validate.Delta(100))
}
