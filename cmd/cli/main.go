package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	baseURL   string
	timeout   time.Duration
	token     string
	tokenFile string
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pocketledger",
		Short:         "PocketLedger CLI tool",
		Long:          `A command line interface for the PocketLedger API and local maintenance tasks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", envOr("POCKETLEDGER_URL", "http://localhost:8080"), "Base URL of the PocketLedger API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("POCKETLEDGER_TOKEN"), "Bearer token (defaults to the one saved by login)")
	root.PersistentFlags().StringVar(&tokenFile, "token-file", defaultTokenFile(), "Where login saves the bearer token")

	root.AddCommand(
		registerCmd(),
		loginCmd(),
		addCmd(),
		listCmd(),
		summaryCmd(),
		calendarCmd(),
		importCmd(),
		migrateCmd(),
		hashPasswordCmd(),
	)

	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pocketledger-token"
	}
	return filepath.Join(home, ".pocketledger", "token")
}
