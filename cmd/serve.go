package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the expansion analysis HTTP API",
	Long:  "Exposes score, conflicts, and hotspots computations plus run history over HTTP for the portal frontend.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		srv := api.New(api.Options{
			Port:   port,
			Region: cfg.Sync.Region,
			Store:  st,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "serve")
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			zap.L().Info("server stopped")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (defaults to server.port)")
	rootCmd.AddCommand(serveCmd)
}
