package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/app"
	"github.com/klabast/wb-services/thermotec-agenda/internal/cep"
	"github.com/klabast/wb-services/thermotec-agenda/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve subcommand; static holds style.css
func NewServeCommand(static fs.FS) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduling web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunServer(cmd, static, port)
		},
	}
	AddServeFlags(cmd, &port)
	return cmd
}

// AddServeFlags registers the flags shared by the root and serve commands
func AddServeFlags(cmd *cobra.Command, port *int) {
	cmd.Flags().IntVar(port, "port", 0, "Port to listen on (overrides HTTP_PORT)")
}

type briefingRunner interface {
	Start(ctx context.Context)
}

// startBriefing runs b in its own goroutine until ctx is done or the
// returned wait is called; wait blocks until b has stopped.
func startBriefing(ctx context.Context, b briefingRunner) (wait func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Start(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// RunServer wires configuration, index, lookup and scheduler and serves
// until SIGINT or SIGTERM.
func RunServer(cmd *cobra.Command, static fs.FS, port int) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	authPath, err := app.ResolveAuthFile(cfg.AuthFile)
	if err != nil {
		return err
	}
	auth, err := app.LoadAuth(authPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load auth credentials: %w", err)
	}

	lookup, err := cep.NewClient(cfg.CEP.BaseURL, cfg.CEP.CacheSize,
		cep.WithHTTPClient(&http.Client{Timeout: cfg.CEP.Timeout}),
		cep.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	index := agenda.NewIndex()
	srv, err := app.NewServer(app.Options{
		Index:      index,
		Lookup:     lookup,
		Auth:       auth,
		Logger:     logger,
		Location:   loc,
		Static:     static,
		CEPTimeout: cfg.CEP.Timeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.BriefingEnabled() {
		briefing, err := scheduler.New(cfg.BriefingSpec, index, loc, logger)
		if err != nil {
			return err
		}
		wait := startBriefing(ctx, briefing)
		defer wait()
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 starting Thermotec agenda",
			"url", fmt.Sprintf("http://localhost:%d", cfg.Port),
			"timezone", loc.String(),
			"auth", auth.Enabled(),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
