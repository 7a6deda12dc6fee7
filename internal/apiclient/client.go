// Package apiclient talks to the store API: catalog pages, the session cart
// and order placement.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"techhub/internal/domain"
	applog "techhub/internal/log"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("apiclient: service unavailable")

// StatusError is a non-2xx answer. The request reached the server, so it is
// a rejection rather than a connectivity failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: status %d: %s", e.StatusCode, e.Body)
}

// IsRejection reports whether err is a server rejection (non-2xx) as opposed
// to a transport failure.
func IsRejection(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

const breakerTrip = 5

type Client struct {
	base    string
	http    *http.Client
	session string
	breaker *gobreaker.CircuitBreaker[[]byte]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithSession sends sid as the session cookie on every request.
func WithSession(sid string) Option { return func(c *Client) { c.session = sid } }

// WithBreakerTimeout sets how long the breaker stays open before probing.
func WithBreakerTimeout(d time.Duration) Option {
	return func(c *Client) { c.breaker = newBreaker(d) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{base: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(10 * time.Second)
	}
	return c
}

func newBreaker(timeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "store-api",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrip
		},
		// Only transport failures count. Rejections and cancellations say
		// nothing about the health of the server.
		IsSuccessful: func(err error) bool {
			return err == nil || IsRejection(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			applog.Warn("apiclient.breaker", nil, map[string]any{"name": name, "from": from.String(), "to": to.String()})
		},
	})
}

func (c *Client) Session() string { return c.session }

func (c *Client) do(ctx context.Context, method, path string, body any, hdr http.Header) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	res, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range hdr {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if c.session != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: c.session})
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
		}
		return b, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, err
}

func decode[T any](body []byte, err error) (T, error) {
	var v T
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// FetchProducts requests one catalog page.
func (c *Client) FetchProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Category != "" {
		v.Set("category", string(q.Category))
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return decode[domain.ProductPage](c.do(ctx, http.MethodGet, "/products?"+v.Encode(), nil, nil))
}

// AddToCart applies a signed quantity delta and returns the server cart.
func (c *Client) AddToCart(ctx context.Context, productID int64, delta int) (domain.Cart, error) {
	body := domain.CartMutation{ProductID: productID, Quantity: delta}
	return decode[domain.Cart](c.do(ctx, http.MethodPost, "/cart", body, nil))
}

func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	return decode[domain.Cart](c.do(ctx, http.MethodGet, "/cart", nil, nil))
}

// PlaceOrder submits an order. Reusing key on retry lets the server answer
// with the original order instead of creating a second one.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest, key string) (domain.OrderReceipt, error) {
	var hdr http.Header
	if key != "" {
		hdr = http.Header{"Idempotency-Key": []string{key}}
	}
	return decode[domain.OrderReceipt](c.do(ctx, http.MethodPost, "/orders", req, hdr))
}
