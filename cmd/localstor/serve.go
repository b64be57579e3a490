package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/localstor/pkg/api"
	"github.com/cuemby/localstor/pkg/events"
	"github.com/cuemby/localstor/pkg/health"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/router"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Register every local backend and serve the inventory over HTTP",
	Long: `Register every local backend and keep the connections open while serving
health, readiness, Prometheus metrics and the read-only inventory API
on the configured metrics address.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("collect-interval")
		probeInterval, _ := cmd.Flags().GetDuration("probe-interval")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := log.WithComponent("serve")
		broker := events.NewBroker(metrics.EventsDropped.Inc)
		broker.Start()
		defer broker.Stop()

		sub := broker.Subscribe()
		done := make(chan struct{})
		go func() {
			defer close(done)
			logEvents(logger, sub)
		}()
		defer func() {
			broker.Unsubscribe(sub)
			<-done
		}()

		return withRouter(ctx, func(r *router.Router) error {
			collector := metrics.NewCollector(r, interval)
			collector.Start()
			defer collector.Stop()

			monitor := health.NewMonitor(health.Config{Interval: probeInterval, Timeout: cfg.Timeout},
				metrics.UpdateComponent, backendCheckers(r)...)
			monitor.Start()
			defer monitor.Stop()

			server := api.NewServer(r)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := server.Start(cfg.MetricsAddr); err != nil {
					return fmt.Errorf("API server error: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Stop(shutdownCtx)
			})

			logger.Info().
				Str("addr", cfg.MetricsAddr).
				Strs("backends", backendNames(r)).
				Msg("Serving storage inventory")
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s. Press Ctrl+C to stop.\n", cfg.MetricsAddr)

			err := g.Wait()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Shutdown complete")
			return err
		}, router.WithEvents(broker))
	},
}

// logEvents writes every storage event to the log until sub is closed
func logEvents(logger zerolog.Logger, sub events.Subscriber) {
	for event := range sub {
		e := logger.Info().
			Str("event", string(event.Type)).
			Str("event_id", event.ID)
		if event.Backend != "" {
			e = e.Str("backend", event.Backend)
		}
		if event.SystemID != "" {
			e = e.Str("system_id", event.SystemID)
		}
		for k, v := range event.Metadata {
			e = e.Str(k, v)
		}
		e.Msg(event.Message)
	}
}

// backendCheckers probes every active backend through the router
func backendCheckers(r *router.Router) []health.Checker {
	var checkers []health.Checker
	for _, id := range r.Backends() {
		checkers = append(checkers, health.NewProbeChecker(metrics.BackendComponent(string(id)),
			func(ctx context.Context) error {
				return r.Probe(ctx, id)
			}))
	}
	return checkers
}

func backendNames(r *router.Router) []string {
	ids := r.Backends()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return names
}

func init() {
	serveCmd.Flags().Duration("collect-interval", 15*time.Second, "How often router metrics are published")
	serveCmd.Flags().Duration("probe-interval", 30*time.Second, "How often each backend is probed for liveness")
	rootCmd.AddCommand(serveCmd)
}
