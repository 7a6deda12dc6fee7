package validate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"techhub/internal/domain"
)

var (
	reExpiry = regexp.MustCompile(`^\d{2}/\d{2}$`)
	reDigits = regexp.MustCompile(`^[0-9]+$`)
)

const (
	maxDelta = 99

	// MaxQueryRunes bounds search text; longer input is rejected, not cut.
	MaxQueryRunes = 100
)

// Q trims a search query. Any text is a valid substring search as long as it
// is UTF-8 and at most MaxQueryRunes long. An empty query means "no search".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !utf8.ValidString(s) {
		return "", false
	}
	return s, utf8.RuneCountInString(s) <= MaxQueryRunes
}

// Category validates an optional category filter against the fixed set.
func Category(s string) (domain.Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	c := domain.Category(s)
	return c, c.Valid()
}

// Int parses a non-negative integer query parameter, falling back to def.
func Int(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Limit clamps a page size into [1, 100].
func Limit(s string, def int) int {
	n := Int(s, def)
	if n < 1 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}

// Delta validates a signed cart quantity change.
func Delta(n int) bool {
	return n != 0 && n >= -maxDelta && n <= maxDelta
}

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when there are no field errors.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func required(errs FieldErrors, field, value, msg string) bool {
	if strings.TrimSpace(value) == "" {
		errs[field] = msg
		return false
	}
	return true
}

// Shipping checks the six required shipping fields.
func Shipping(d domain.ShippingData) FieldErrors {
	errs := FieldErrors{}
	required(errs, "name", d.Name, "Name is required")
	required(errs, "address", d.Address, "Address is required")
	required(errs, "city", d.City, "City is required")
	required(errs, "postal", d.Postal, "Postal code is required")
	required(errs, "phone", d.Phone, "Phone is required")
	switch {
	case d.DeliveryTime == "":
		errs["deliveryTime"] = "Delivery time is required"
	case !validDelivery(d.DeliveryTime):
		errs["deliveryTime"] = "Unknown delivery time"
	}
	return errs
}

func validDelivery(d domain.DeliveryTime) bool {
	for _, x := range domain.DeliveryTimes {
		if x == d {
			return true
		}
	}
	return false
}

// Payment checks the method and, for cards, the four card fields.
func Payment(p domain.PaymentData) FieldErrors {
	errs := FieldErrors{}
	switch p.Method {
	case domain.PaymentPayPal, domain.PaymentCash:
		return errs
	case domain.PaymentCard:
	default:
		errs["method"] = "Choose a payment method"
		return errs
	}

	if required(errs, "cardNumber", p.CardNumber, "Card number is required") {
		digits := strings.Join(strings.Fields(p.CardNumber), "")
		if len(digits) < 16 || !reDigits.MatchString(digits) {
			errs["cardNumber"] = "Invalid card number"
		}
	}
	required(errs, "cardName", p.CardName, "Name on card is required")
	if required(errs, "cardExpiry", p.CardExpiry, "Expiry date is required") && !reExpiry.MatchString(p.CardExpiry) {
		errs["cardExpiry"] = "Format: MM/YY"
	}
	if required(errs, "cardCvv", p.CardCVV, "CVV is required") && len(p.CardCVV) < 3 {
		errs["cardCvv"] = "Invalid CVV"
	}
	return errs
}
