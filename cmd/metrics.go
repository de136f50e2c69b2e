package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/exception"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/monitoring"
)

var metricsListen string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve prometheus metrics until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveMetrics(metricsListen)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().StringVar(&metricsListen, "listen", ":9100", "address the metrics endpoint listens on")
}

func serveMetrics(listen string) error {
	// opening the chain registers the collectors and publishes the current queue state
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()
	monitoring.SetQueueSize(env.ledger.Pending())

	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	exception.SafeGo("MetricsServer", func() {
		logx.Info("METRICS", "listening on ", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
