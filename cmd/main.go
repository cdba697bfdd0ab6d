package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

// rootCmd is the crowdfund binary. Every subcommand reads its
// configuration from the environment, optionally seeded from a dotenv
// file given with --env-file.
var rootCmd = &cobra.Command{
	Use:           "crowdfund",
	Short:         "Escrow crowdfunding ledger and settlement engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is parsed")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
