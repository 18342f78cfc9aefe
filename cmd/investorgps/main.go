// Investor GPS — macroeconomic data platform for market dashboards.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/raghuchilukamari/investor-gps/api"
	"github.com/raghuchilukamari/investor-gps/internal/config"
	"github.com/raghuchilukamari/investor-gps/internal/macro"
	"github.com/raghuchilukamari/investor-gps/internal/macrometer"
	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/internal/providers"
	"github.com/raghuchilukamari/investor-gps/internal/providers/bls"
	"github.com/raghuchilukamari/investor-gps/internal/reaction"
	"github.com/raghuchilukamari/investor-gps/internal/storage"
	"github.com/raghuchilukamari/investor-gps/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "investorgps",
	Short: "Investor GPS — macroeconomic data platform",
	Long: `Investor GPS
A Go-based platform that normalizes labor-statistics time series, maintains a
macro indicator dashboard, analyzes market reactions to economic events, and
scores financial text sentiment.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(reactCmd)
	rootCmd.AddCommand(statusCmd)
}

// newRegistry builds a provider registry from the loaded configuration.
func newRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterWithKeys(reg, cfg.Providers.BLSKey, cfg.Providers.FREDKey); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}
	return reg, nil
}

func openStorage() (*storage.Storage, error) {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("storage setup failed: %w", err)
	}
	return store, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Investor GPS %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		defer srv.Close()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting Investor GPS API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Ingest Command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest [series-id...]",
	Short: "Fetch and normalize labor-statistics series",
	Long: `Fetch the given series from the labor-statistics provider, normalize
them into the wide matrix and summary tables, and replace the stored batch.
With no arguments the full named-series catalog is ingested.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		store, err := openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		ids := args
		if len(ids) == 0 {
			for _, id := range bls.SeriesMap {
				ids = append(ids, id)
			}
		}

		yearsBack := cfg.Macro.YearsBack
		if yearsBack <= 0 {
			yearsBack = 2
		}
		endYear := strconv.Itoa(time.Now().Year())
		startYear := strconv.Itoa(time.Now().Year() - yearsBack)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := macro.NewIngestor(reg, store).Run(ctx, ids, startYear, endYear)
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %d series (%d matrix rows)\n", len(result.SeriesStored), result.MatrixRows)
		for _, id := range result.SeriesSkipped {
			fmt.Printf("  skipped: %s (%s)\n", id, bls.SeriesName(id))
		}
		for id, sum := range result.Summaries {
			fmt.Printf("  %-22s %s %d: %.3f (%s)\n",
				bls.SeriesName(id), sum.Period, sum.Year, sum.Value, sum.Sentiment)
		}
		return nil
	},
}

// --- Refresh Command (indicator dashboard) ---

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the macro indicator dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		store, err := openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := macrometer.NewService(reg, store).Refresh(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Refreshed %d indicators", len(result.Refreshed))
		if len(result.Failed) > 0 {
			fmt.Printf(" (%d failed: %v)", len(result.Failed), result.Failed)
		}
		fmt.Println()
		return nil
	},
}

// --- React Command (market reaction) ---

var reactCmd = &cobra.Command{
	Use:   "react [event-type] [event-date]",
	Short: "Analyze the market reaction to an economic event",
	Long: `Analyze how stocks, bonds, gold, and the dollar moved around an event
date (YYYY-MM-DD) and store the resulting market event.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventDate, err := utils.ParseDateOnly(args[1])
		if err != nil {
			return fmt.Errorf("invalid event date %q; use YYYY-MM-DD", args[1])
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}
		store, err := openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		description, _ := cmd.Flags().GetString("description")

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		event, err := reaction.NewAnalyzer(reg, nil).AnalyzeMarketReaction(ctx, eventDate, args[0], description)
		if err != nil {
			return err
		}
		if _, err := store.SaveMarketEvent(ctx, event); err != nil {
			return err
		}

		fmt.Printf("Market reaction to %s on %s: %s\n",
			event.EventType, utils.DateOnly(event.EventDate), event.AggregateReaction.Direction)
		for class, r := range event.AssetReactions {
			if r.TotalChange != nil {
				fmt.Printf("  %-8s %+.3f%%\n", class, *r.TotalChange)
			} else {
				fmt.Printf("  %-8s no data\n", class)
			}
		}
		return nil
	},
}

func init() {
	reactCmd.Flags().String("description", "", "event description")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Investor GPS — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):  %s\n", time.Now().UTC().Format(time.RFC3339))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    API Server:      %s:%d\n", cfg.API.Host, cfg.API.Port)
		dbPath := cfg.Database.Path
		if dbPath == "" {
			dbPath = "(default temp dir)"
		}
		fmt.Printf("    Database:        %s\n", dbPath)
		fmt.Printf("    Ingest window:   %d years\n", cfg.Macro.YearsBack)
		fmt.Printf("    Reaction window: %d days\n", cfg.Reaction.HistoricalWindowDays)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
