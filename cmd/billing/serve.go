package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hsdfat8/telbill/internal/adapters/factory"
	httpAdapter "github.com/hsdfat8/telbill/internal/adapters/http"
	"github.com/hsdfat8/telbill/internal/domain/service"
	"github.com/hsdfat8/telbill/internal/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the billing HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.New("billing-main", "")

	cfg, err := opts.loadConfig()
	if err != nil {
		log.Errorw("Failed to load configuration", "error", err)
		return err
	}

	repos, err := factory.NewDatabaseAdapterFactory().BuildRepositories(ctx, cfg)
	if err != nil {
		log.Errorw("Failed to initialize repositories", "error", err)
		return err
	}
	defer func() {
		if err := repos.Close(context.Background()); err != nil {
			log.Errorw("Failed to close repositories", "error", err)
		}
	}()

	log.Infow("✓ Repositories initialized", "accounts", cfg.Storage.Accounts, "ledger", cfg.Storage.Ledger)

	billingService := service.NewBillingService(repos.Accounts, repos.Ledger, repos.Devices, repos.Catalog)

	log.Info("✓ Billing service initialized")

	routerOpts := httpAdapter.RouterOptions{HealthCheck: repos.HealthCheck}
	if cfg.Metrics.Enabled {
		logger.InitMetrics()
		routerOpts.MetricsPath = cfg.Metrics.Path
	}

	httpServer := httpAdapter.NewServer(httpAdapter.ServerConfig{
		ListenAddr:      fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		EnableH2C:       cfg.Server.EnableH2C,
		TLSCertFile:     cfg.Server.TLSCertFile,
		TLSKeyFile:      cfg.Server.TLSKeyFile,
	}, billingService, routerOpts)

	if err := httpServer.Start(); err != nil {
		log.Errorw("Failed to start HTTP server", "error", err)
		return err
	}

	log.Infow("✓ HTTP server listening", "address", httpServer.GetAddr(), "h2c", cfg.Server.EnableH2C)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	if err := httpServer.Stop(); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}
