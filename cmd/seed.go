package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crowdfund-escrow/internal/adapter/asset"
	"crowdfund-escrow/internal/adapter/auth"
	"crowdfund-escrow/internal/adapter/usecase"
	"crowdfund-escrow/internal/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo campaign in the configured store",
	Long: `Create the demo campaign in the configured store. Backers are funded
through the token service at ASSET_URL, which must accept mint requests.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, logger, logCloser, err := bootstrap()
		if err != nil {
			return err
		}
		defer logCloser.Close()

		if cfg.Asset.URL == "" {
			return errors.New("seed needs ASSET_URL; use serve --seed for the in-process ledger")
		}
		client, err := asset.NewClient(cfg.Asset.URL, cfg.Asset.Timeout)
		if err != nil {
			return err
		}

		repo, closeStore, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		clk, err := newClock(cfg.Clock, nil, logger)
		if err != nil {
			return err
		}
		svc := usecase.NewCampaignUseCase(repo, client, clk, auth.NewAuthorizer(), nil, logger)
		if err := db.Seed(ctx, svc, client.Mint, clk.Now()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo campaign seeded", slog.String("campaign_id", db.SeedCampaignID))
		return nil
	},
}
