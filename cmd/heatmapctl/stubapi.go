package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/adapter/stubapi"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	"github.com/spf13/cobra"
)

type stubAPICmd struct {
	root *rootOptions
	addr string
	seed bool
}

func newStubAPICmd(root *rootOptions) *cobra.Command {
	sc := &stubAPICmd{root: root}
	cmd := &cobra.Command{
		Use:   "stub-api",
		Short: "Serve an in-memory reports backend",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", ":5000", "Listen address")
	cmd.Flags().BoolVar(&sc.seed, "seed", false, "Start with sample reports")
	return cmd
}

func (sc *stubAPICmd) run(cmd *cobra.Command, _ []string) error {
	logger := observability.NewLogger(sc.root.logLevel, "text")

	handler := stubapi.NewHandler(nil, logger)
	if sc.seed {
		handler.Seed()
	}

	srv := &http.Server{
		Addr:              sc.addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub api listening", "addr", sc.addr, "reports", len(handler.Reports()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("stub api shutting down")
	return srv.Shutdown(shutdownCtx)
}
