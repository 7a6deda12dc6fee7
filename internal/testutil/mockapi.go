// Package testutil wires the mock store API into tests without a listener.
package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"techhub/internal/config"
	"techhub/internal/http/handlers"
	"techhub/internal/repos"
)

type MockAPI struct {
	App *fiber.App
	DB  *sqlx.DB
}

type Option func(*config.Config, *handlers.AppOptions)

// WithFailureRate sets the probability that POST /orders is rejected.
func WithFailureRate(r float64) Option {
	return func(c *config.Config, _ *handlers.AppOptions) { c.OrderFailureRate = r }
}

func WithCatalogSize(n int) Option {
	return func(c *config.Config, _ *handlers.AppOptions) { c.CatalogSize = n }
}

func WithLatency(o handlers.AppOptions) Option {
	return func(_ *config.Config, a *handlers.AppOptions) { *a = o }
}

// NewMockAPI opens a seeded in-memory catalog and builds the API on top.
// Orders never fail unless WithFailureRate says otherwise.
func NewMockAPI(t testing.TB, opts ...Option) *MockAPI {
	t.Helper()
	cfg := config.Config{PageSize: 10, CatalogSize: 30, CatalogSeed: 7}
	var appOpts handlers.AppOptions
	for _, o := range opts {
		o(&cfg, &appOpts)
	}

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.SeedCatalog(db, cfg.CatalogSize, cfg.CatalogSeed); err != nil {
		t.Fatal(err)
	}
	return &MockAPI{App: handlers.NewApp(handlers.NewDeps(db, cfg), appOpts), DB: db}
}

// Client returns an http.Client whose requests are served in-process.
func (m *MockAPI) Client() *http.Client {
	return &http.Client{Transport: Transport{App: m.App}}
}

// Transport is an http.RoundTripper backed by fiber's App.Test. It honours
// request context cancellation even though the app keeps running.
type Transport struct {
	App *fiber.App
}

func (tr Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	type result struct {
		resp *http.Response
		err  error
	}
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(chan result, 1)
	go func() {
		resp, err := tr.App.Test(req.Clone(context.Background()), -1)
		out <- result{resp, err}
	}()
	select {
	case r := <-out:
		return r.resp, r.err
	case <-ctx.Done():
		go func() {
			if r := <-out; r.resp != nil {
				_ = r.resp.Body.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
