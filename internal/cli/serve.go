package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardsheet/pkg/api"
	"github.com/matzehuels/cardsheet/pkg/auth"
	"github.com/matzehuels/cardsheet/pkg/session"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	addr     string
	inMemory bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the forms and admin HTTP API.

Storage, sessions and uploads are chosen by the configuration: MongoDB when
mongo.uri is set, Redis sessions and raster cache when redis.addr is set, and
Cloudinary uploads when its credentials are set. Without them everything stays
on this machine.`,
		Example: `  # Serve with the default config file
  cardsheet serve

  # Throwaway instance for trying things out
  CARDSHEET_ADMIN_EMAIL=admin@example.com \
  CARDSHEET_ADMIN_PASSWORD_HASH="$(cardsheet hash-password)" \
  cardsheet serve --memory --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.inMemory, "memory", false, "keep documents and sessions in memory")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	b, err := openBackends(ctx, cfg, opts.inMemory, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close backends", "err", err)
		}
	}()

	handler := api.New(api.Config{
		Store:    b.store,
		Auth:     auth.New(auth.Credential{Email: cfg.Admin.Email, PasswordHash: cfg.Admin.PasswordHash}, b.sessions, cfg.Admin.SessionTTL.Duration),
		Uploader: b.uploader,
		Exporter: b.runner(logger),
		Local:    b.local,
		Export:   exportDefaults(cfg),
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepSessions(ctx, b.sessions)

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweepSessions removes expired sessions every hour until ctx is done.
func sweepSessions(ctx context.Context, sessions session.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.Cleanup(ctx); err != nil {
				loggerFromContext(ctx).Warn("session cleanup", "err", err)
			}
		}
	}
}
