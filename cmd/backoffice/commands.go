package main

import (
	"context"
	"fmt"
	"os"
	"property-backoffice/internal/client"
	"property-backoffice/internal/config"
	"property-backoffice/internal/database"
	"property-backoffice/internal/reports"
	"property-backoffice/internal/tui"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Width(22)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

func newClient() *client.Client {
	return client.New(apiURL, timeout)
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive properties and contacts editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(newClient(), timeout)
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Total rent, loan payments and expenses per property",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetInt("start")
			end, _ := cmd.Flags().GetInt("end")
			server, _ := cmd.Flags().GetBool("server")
			out, _ := cmd.Flags().GetString("out")
			if end == 0 {
				end = start
			}
			if err := reports.ValidateRange(start, end); err != nil {
				return err
			}

			c := newClient()
			ctx := cmd.Context()
			var report *reports.Report
			var err error
			if server {
				report, err = c.Report(ctx, start, end)
			} else {
				// aggregate locally from the per-property endpoints
				report, err = reports.Build(ctx, client.ReportSource{Client: c}, start, end)
			}
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			printReport(report)

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := report.WriteXLSX(f); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Println(successStyle.Render("Wrote " + out))
			}
			return nil
		},
	}

	year := time.Now().Year()
	cmd.Flags().Int("start", year, "First year of the report")
	cmd.Flags().Int("end", 0, "Last year of the report (defaults to --start)")
	cmd.Flags().Bool("server", false, "Let the API build the report")
	cmd.Flags().String("out", "", "Also write the report to this .xlsx file")
	return cmd
}

func printReport(r *reports.Report) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Report %d-%d", r.StartYear, r.EndYear)))
	fmt.Printf("%-28s %12s %12s %12s %12s\n", "Property", "Rent", "Payments", "Expenses", "Net")
	for _, p := range r.Properties {
		fmt.Printf("%-28.28s %12.2f %12.2f %12.2f %12s\n", p.PropertyName, p.Rent, p.Payments, p.Transactions, formatNet(p.Net))
	}
	t := r.Totals()
	fmt.Printf("%-28s %12.2f %12.2f %12.2f %12s\n", headerStyle.Render("Total"), t.Rent, t.Payments, t.Transactions, formatNet(t.Net))

	if len(t.ByType) > 0 {
		types := make([]string, 0, len(t.ByType))
		for typ := range t.ByType {
			types = append(types, typ)
		}
		sort.Strings(types)
		fmt.Println()
		for _, typ := range types {
			fmt.Println(labelStyle.Render(typ) + fmt.Sprintf("%.2f", t.ByType[typ]))
		}
	}
}

func formatNet(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if v < 0 {
		return warningStyle.Render(s)
	}
	return successStyle.Render(s)
}

func geocodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Geocode properties that have no coordinates yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			// a batch waits between requests, so it can run far longer than one call
			c := client.New(apiURL, 0)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
			defer cancel()

			result, err := c.GeocodeMissing(ctx, limit)
			if err != nil {
				return err
			}

			fmt.Println(headerStyle.Render("Geocoding batch"))
			fmt.Println(labelStyle.Render("Properties") + fmt.Sprint(result.Total))
			fmt.Println(labelStyle.Render("Geocoded") + successStyle.Render(fmt.Sprint(result.Geocoded)))
			fmt.Println(labelStyle.Render("No match") + warningStyle.Render(fmt.Sprint(result.Missed)))
			fmt.Println(labelStyle.Render("Failed") + errorStyle.Render(fmt.Sprint(result.Failed)))
			fmt.Println(labelStyle.Render("Skipped") + fmt.Sprint(result.Skipped))
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum properties to geocode (0 = server default)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts and geocoding quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := newClient().Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(headerStyle.Render("Tables"))
			if tables, ok := stats["tables"].(map[string]interface{}); ok {
				printSorted(tables)
			}
			if quota, ok := stats["geocoding"].(map[string]interface{}); ok {
				fmt.Println(headerStyle.Render("Geocoding quota"))
				printSorted(quota)
			}
			return nil
		},
	}
}

func printSorted(values map[string]interface{}) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(labelStyle.Render(k) + fmt.Sprint(values[k]))
	}
}

func cleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Prune old delete log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("retention-days")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := newClient().CleanupDeleteLogs(cmd.Context(), days, dryRun)
			if err != nil {
				return err
			}

			title := "Delete log cleanup"
			if result.DryRun {
				title += " (dry run)"
			}
			fmt.Println(headerStyle.Render(title))
			if !result.Cutoff.IsZero() {
				fmt.Println(labelStyle.Render("Cutoff") + result.Cutoff.Format("2006-01-02"))
			}
			fmt.Println(labelStyle.Render("Eligible") + fmt.Sprint(result.TargetCount))
			fmt.Println(labelStyle.Render("Deleted") + successStyle.Render(fmt.Sprint(result.DeletedCount)))
			return nil
		},
	}
	cmd.Flags().Int("retention-days", 0, "Override the server's retention (days)")
	cmd.Flags().Bool("dry-run", false, "Only count what would be pruned")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Connects with the server configuration (CONFIG_PATH, DATABASE_URL, DB_TYPE) and applies the schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := os.Getenv("CONFIG_PATH")
			if configPath == "" {
				configPath = "config/backoffice.yaml"
			}
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.ApplyEnv()
			if err := cfg.Validate(); err != nil {
				return err
			}

			gdb, err := database.Open(cfg.Database, cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer gdb.Close()

			if err := gdb.InitSchema(); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Schema up to date (%s)", cfg.Database.Type)))

			counts, err := gdb.Stats(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(labelStyle.Render(name) + fmt.Sprint(counts[name]))
			}
			return nil
		},
	}
}
