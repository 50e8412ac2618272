package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	timeout time.Duration
)

func main() {
	_ = godotenv.Load()

	defaultAPI := os.Getenv("BACKOFFICE_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:3000"
	}

	rootCmd := &cobra.Command{
		Use:          "backoffice",
		Short:        "Property back office client",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")

	rootCmd.AddCommand(
		tuiCmd(),
		reportCmd(),
		geocodeCmd(),
		statsCmd(),
		cleanupCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
