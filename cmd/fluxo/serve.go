package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"fluxo/internal/amqp"
	"fluxo/internal/cache"
	"fluxo/internal/cli"
	"fluxo/internal/config"
	"fluxo/internal/core"
	apphttp "fluxo/internal/http"
	"fluxo/internal/log"
	"fluxo/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var (
	flagPort      string
	flagNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard on a local web server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPort, "port", "p", "", "HTTP port (PORT)")
	cmd.Flags().BoolVar(&flagNoBrowser, "no-browser", false, "do not open a browser tab (OPEN_BROWSER=false)")
}

func applyServeFlags(flags *pflag.FlagSet, c *config.Config) {
	if flags.Changed("port") {
		c.Port = flagPort
	}
	if flags.Changed("no-browser") && flagNoBrowser {
		c.OpenBrowser = false
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger := setup(cmd)

	ctx, cancel := cli.ShutdownContext(cmd.Context(), logger)
	defer cancel()

	dash, cleanup, err := newDashboard(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize data source", err)
	}
	defer cleanup()

	// A missing input is fatal at startup; afterwards the page shows a panel.
	if err := dash.Ready(ctx); err != nil && !core.IsMalformedData(err) {
		cli.Fatal(logger, "Input not available", err)
	}

	caches := cache.NewManager(logger)
	for _, c := range dash.Caches() {
		caches.Register(c)
	}
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv, err := apphttp.NewServer(":"+cfg.Port, dash, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		cli.Fatal(logger, "Failed to listen", err)
	}
	url := fmt.Sprintf("http://localhost:%s/", cfg.Port)
	logger.Info("Starting fluxo server",
		"url", url,
		"source", dash.Source(),
		log.FieldOperation, log.OpStartup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	// Imports archived by another process refresh the memo ahead of the next page load.
	if cfg.AMQPURL != "" && cfg.DataSource == config.SourceSQLite {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, imports will not refresh the dashboard", "error", err)
		} else {
			defer client.Close()
			watcher := worker.NewImportWatcher(dash, logger)
			g.Go(func() error {
				err := client.ConsumeImportCompleted(gctx, watcher.HandleImportCompleted)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("Import watcher stopped", "error", err)
				}
				return nil
			})
		}
	}

	if cfg.OpenBrowser {
		cli.OpenBrowser(logger, url)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
