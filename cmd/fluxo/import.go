package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fluxo/internal/amqp"
	"fluxo/internal/backend"
	"fluxo/internal/cli"
	"fluxo/internal/log"
	"fluxo/internal/services"
	"fluxo/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Archive CSV or XLSX exports into the SQLite store",
	Long: `Import validates each export and stores its raw rows in the SQLite archive,
where "--source sqlite" can read them back. When AMQP_URL is set, an
import notification is published for every archived file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger := setup(cmd)
	ctx := cmd.Context()
	logger = logger.WithComponent(log.ComponentStorage)

	l, _, err := newLoader(cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to load rules", err)
	}

	srcCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid source configuration", err)
	}
	srcCfg.Type = backend.FileSource
	factory := backend.NewFactory(logger)

	srcs := make([]source.Reader, 0, len(args))
	for _, path := range args {
		srcCfg.DataFile = path
		res, err := factory.CreateSource(ctx, srcCfg)
		if err != nil {
			cli.Fatal(logger, "Invalid input file", err)
		}
		srcs = append(srcs, res.Source)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			publisher = client
		}
	}

	svc := services.NewImportService(repo, publisher, l)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Import service close failed", "error", err)
		}
	}()

	results, err := svc.ImportAll(ctx, srcs)
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s as #%d: %d rows, %d transactions, %d skipped\n",
			r.Origin, r.ID, r.Report.Rows, r.Report.Transactions, r.Report.Skipped)
	}
	if err != nil {
		logger.Error("Import failed", "error", err)
		return err
	}
	return nil
}
