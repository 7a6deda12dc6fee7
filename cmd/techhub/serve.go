package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"techhub/internal/http/handlers"
	"techhub/internal/repos"
)

func serveCmd() *cobra.Command {
	var rateLimit int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock store API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repos.SeedCatalog(db, cfg.CatalogSize, cfg.CatalogSeed); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}

			app := handlers.NewApp(handlers.NewDeps(db, cfg), handlers.AppOptions{
				ProductsLatency: cfg.MockLatency,
				CartLatency:     cfg.MockCartLatency,
				OrderLatency:    cfg.MockOrderLatency,
				RateLimit:       rateLimit,
				AccessLog:       true,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = app.ShutdownWithContext(sctx)
			}()

			log.Printf("[serve] listening on :%s (catalog=%d, order failure rate=%.2f)", cfg.Port, cfg.CatalogSize, cfg.OrderFailureRate)
			return app.Listen(":" + cfg.Port)
		},
	}
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 600, "requests per minute per IP (0 disables)")
	return cmd
}
