package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crowdfund-escrow/internal/adapter/auth"
	"crowdfund-escrow/internal/config"
	"crowdfund-escrow/internal/core/domain"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <address>",
	Short: "Print a bearer token that acts as address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Auth.Secret == "" {
			return errors.New("AUTH_SECRET is not set")
		}
		subject := domain.Address(args[0])
		if subject.IsZero() {
			return errors.New("address must not be empty")
		}
		v, err := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, time.Now)
		if err != nil {
			return err
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.Auth.TokenTTL
		}
		token, err := v.Issue(subject, ttl)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	tokenCmd.AddCommand(tokenIssueCmd)
}
