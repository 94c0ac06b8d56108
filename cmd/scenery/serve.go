package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/internal/cli"
	httpAdapter "github.com/aretw0/scenery/pkg/adapters/http"
	"github.com/aretw0/scenery/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP API",
	Long: `Serves the project's conversation as a JSON API with Server-Sent Events.
Prometheus metrics are exposed on a separate port.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		metricsPort, _ := cmd.Flags().GetInt("metrics-port")
		inputRate, _ := cmd.Flags().GetFloat64("input-rate")
		logger := cli.NewLogger(opts)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		project := cli.NewProject(opts, logger)
		g, err := project.LoadGraph(sigCtx)
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics(observability.WithLogger(logger))
		bot, closeStore, err := project.NewBot(g, scenery.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			return err
		}
		defer closeStore()

		handler := httpAdapter.NewHandler(bot,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRateLimit(inputRate, 3),
		)
		api := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		eg, ctx := errgroup.WithContext(sigCtx)
		eg.Go(func() error { return cli.ListenAndServe(ctx, api, logger) })
		if metricsPort > 0 {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", metricsPort),
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			eg.Go(func() error { return cli.ListenAndServe(ctx, srv, logger) })
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on :%d\n", opts.Dir, port)
		return eg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Int("metrics-port", 9090, "Port for /metrics, 0 disables it")
	serveCmd.Flags().Float64("input-rate", 0, "Inputs per second allowed per session, 0 disables the limit")
}
