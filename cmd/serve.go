package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"crowdfund-escrow/internal/adapter/asset"
	"crowdfund-escrow/internal/adapter/auth"
	"crowdfund-escrow/internal/adapter/events"
	httpadapter "crowdfund-escrow/internal/adapter/http"
	"crowdfund-escrow/internal/adapter/metrics"
	"crowdfund-escrow/internal/adapter/usecase"
	"crowdfund-escrow/internal/config/configs"
	"crowdfund-escrow/internal/core/domain"
	"crowdfund-escrow/internal/db"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The ledger store is chosen by STORAGE_DRIVER. Without
ASSET_URL an in-process token ledger is used and exposed under /tokens.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "create the demo campaign on start")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, logCloser, err := bootstrap()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	assets, ledger, err := newAssetService(cfg.Asset)
	if err != nil {
		return err
	}
	clk, err := newClock(cfg.Clock, reg, logger)
	if err != nil {
		return err
	}
	authenticate, err := newAuthMiddleware(cfg.Auth, clk.Now, logger)
	if err != nil {
		return err
	}

	bus := events.NewBus(logger)
	if err = bus.SubscribeAll(events.LogHandler(logger)); err != nil {
		return err
	}
	if err = bus.SubscribeAll(m.ObserveEvent); err != nil {
		return err
	}

	svc := usecase.NewCampaignUseCase(repo, assets, clk, auth.NewAuthorizer(), bus, logger)

	if seedOnStart {
		if ledger == nil {
			return errors.New("--seed needs the in-process token ledger; unset ASSET_URL or use the seed command")
		}
		mint := func(_ context.Context, token, to domain.Address, amount domain.Amount) error {
			return ledger.Mint(token, to, amount)
		}
		if err = db.Seed(ctx, svc, mint, clk.Now()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo campaign seeded", slog.String("campaign_id", db.SeedCampaignID))
	}

	middlewares := []func(http.Handler) http.Handler{authenticate}
	if cfg.Metrics.Enabled {
		middlewares = append([]func(http.Handler) http.Handler{m.Middleware}, middlewares...)
	}
	handler := httpadapter.NewHandler(svc, logger, middlewares...)

	root := chi.NewRouter()
	if cfg.Metrics.Enabled {
		root.Handle(cfg.Metrics.Path, metrics.Handler(reg))
	}
	if ledger != nil {
		root.Mount("/tokens", asset.NewHandler(ledger, logger))
	}
	root.Mount("/", handler.Router())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           root,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
			return err
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}

// newAuthMiddleware verifies bearer tokens signed with AUTH_SECRET and,
// in development, trusts the X-Principal header.
func newAuthMiddleware(cfg configs.Auth, now func() time.Time, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	var verifier *auth.Verifier
	if cfg.Secret != "" {
		v, err := auth.NewVerifier(cfg.Secret, cfg.Issuer, now)
		if err != nil {
			return nil, err
		}
		verifier = v
	}
	if verifier == nil && !cfg.InsecureHeader {
		return nil, errors.New("AUTH_SECRET is required unless AUTH_INSECURE_HEADER is set")
	}
	if cfg.InsecureHeader {
		logger.Warn("trusting the principal header; never enable this in production",
			slog.String("header", auth.PrincipalHeader))
	}
	return auth.Middleware(verifier, cfg.InsecureHeader), nil
}
