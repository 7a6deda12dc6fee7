package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"techhub/internal/config"
	"techhub/internal/shop"
	"techhub/internal/storage"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "techhub",
		Short:         "TechHub storefront: mock store API and command-line client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(cartCmd())
	rootCmd.AddCommand(checkoutCmd())
	rootCmd.AddCommand(ordersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and tees logs to LOG_FILE when set.
func loadConfig() config.Config {
	cfg := config.Load()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}
	return cfg
}

type closers []io.Closer

func (cs closers) Close() error {
	for i := len(cs) - 1; i >= 0; i-- {
		_ = cs[i].Close()
	}
	return nil
}

// openShop builds the client side against API_BASE_URL with the configured
// store. query is the startup search state.
func openShop(ctx context.Context, cfg config.Config, query string) (*shop.Shop, io.Closer, error) {
	store, closer, err := storage.Open(cfg.StoreBackend, cfg.StoreDSN, cfg.RedisAddr, "client")
	if err != nil {
		return nil, nil, err
	}
	s, err := shop.New(ctx, shop.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Store:      store,
		PageSize:   cfg.PageSize,
		Locale:     cfg.Locale,
		Query:      query,
	})
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return s, closers{closer, shopCloser{s}}, nil
}

type shopCloser struct{ s *shop.Shop }

func (c shopCloser) Close() error {
	c.s.Close()
	return nil
}
