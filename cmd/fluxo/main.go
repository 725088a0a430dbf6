package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fluxo/internal/aggregate"
	"fluxo/internal/backend"
	"fluxo/internal/cli"
	"fluxo/internal/config"
	"fluxo/internal/core"
	"fluxo/internal/loader"
	"fluxo/internal/log"
	"fluxo/internal/rules"
	"fluxo/internal/services"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fluxo",
	Short: "Financial cash-flow dashboard",
	Long: `Fluxo reads a spreadsheet export of financial movements, aggregates it by
period, category, supplier and account, and serves an interactive dashboard
in the browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Flags shared by every subcommand; they override the environment.
var (
	flagSource   string
	flagDataFile string
	flagDB       string
	flagRules    string
	flagLogLevel string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSource, "source", "", "data source: file, sheets or sqlite (DATA_SOURCE)")
	pf.StringVarP(&flagDataFile, "file", "f", "", "CSV or XLSX export to read (DATA_FILE)")
	pf.StringVar(&flagDB, "db", "", "SQLite archive path (SQLITE_DB_PATH)")
	pf.StringVar(&flagRules, "rules", "", "TOML classification rules (RULES_FILE)")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, summaryCmd, importCmd)
}

// setup loads .env, the configuration and the logger. Flags set on cmd win
// over environment values.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger) {
	cli.LoadEnvFile()

	level := os.Getenv("LOG_LEVEL")
	if cmd.Flags().Changed("log-level") {
		level = flagLogLevel
	}
	logger := cli.SetupLogger(level)

	cfg := cli.LoadAndValidateConfig(logger, func(c *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("source") {
			c.DataSource = flagSource
		}
		if flags.Changed("file") {
			c.DataFile = flagDataFile
		}
		if flags.Changed("db") {
			c.SQLiteDBPath = flagDB
		}
		if flags.Changed("rules") {
			c.RulesFile = flagRules
		}
		if flags.Changed("log-level") {
			c.LogLevel = flagLogLevel
		}
		applyServeFlags(flags, c)
	})
	return cfg, logger
}

func newLoader(cfg *config.Config, logger *log.Logger) (*loader.Loader, rules.Rules, error) {
	r := rules.Default()
	if cfg.RulesFile != "" {
		loaded, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return nil, rules.Rules{}, err
		}
		r = loaded
	}
	opts := loader.Options{
		DateFormat: cfg.DateFormat,
		Decimal:    core.DecimalStyle(cfg.DecimalSeparator),
		Rules:      r,
	}
	return loader.New(opts, logger), r, nil
}

// newDashboard opens the configured source and wires the dashboard service.
// The returned cleanup must be called when done.
func newDashboard(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.DashboardService, func(), error) {
	l, r, err := newLoader(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}

	srcCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateSource(ctx, srcCfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Source cleanup failed", "error", err)
			}
		}
	}

	rate := cfg.MonthlyRate()
	opts := services.DashboardOptions{
		Contributions: aggregate.ContributionOptions{
			MonthlyRate: &rate,
			Amortize:    cfg.ContributionAmortize,
			Rules:       r,
		},
	}
	if srcCfg.Type == backend.SheetsSource {
		opts.RemoteTTL = cfg.SheetsCacheTTL
	}
	return services.NewDashboardService(res.Source, l, opts, logger), cleanup, nil
}
