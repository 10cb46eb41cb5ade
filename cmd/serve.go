package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/server"
)

var serveAllowAll bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and live change-log feed",
	Long: `Starts the HTTP server the dashboard talks to: recipe runs, the
approval queue, roles, artifacts, the change log, and a websocket feed
of new change-log entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.buildRunner()
		if err != nil {
			return err
		}

		if _, err := a.engine.EnsureSession(cmd.Context()); err != nil {
			return fmt.Errorf("bootstrapping session: %w", err)
		}

		srv := server.New(
			server.Config{Addr: a.cfg.ListenAddr, AllowAll: serveAllowAll},
			a.companies, a.roles, a.artifacts, a.changes, a.engine, run,
		)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
