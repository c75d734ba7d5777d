package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	tellerhttp "github.com/aretw0/teller/pkg/adapters/http"
)

// Handler returns the HTTP API of app.
func (a *App) Handler() http.Handler {
	srv := a.Config.Server
	return tellerhttp.NewHandler(a.Engine,
		tellerhttp.WithLogger(a.Logger),
		tellerhttp.WithAllowedOrigins(srv.AllowedOrigins...),
		tellerhttp.WithRateLimit(srv.RateLimit, srv.Burst),
		tellerhttp.WithTrustedProxy(srv.TrustedProxy),
		tellerhttp.WithMetricsHandler(a.Metrics.Handler()),
	)
}

// Serve listens on the configured address until ctx is done.
func Serve(ctx context.Context, app *App) error {
	ln, err := net.Listen("tcp", app.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.Config.Server.Addr, err)
	}
	return ServeListener(ctx, app, ln)
}

// ServeListener serves the API on ln and sweeps idle sessions in the
// background. It shuts down gracefully when ctx is done.
func ServeListener(ctx context.Context, app *App, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	sessions := app.Config.Session
	go app.Engine.Sessions().RunJanitor(janitorCtx, sessions.SweepInterval, sessions.IdleTimeout)

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Teller API listening", "address", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	grace := app.Config.Server.ShutdownGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	app.Logger.Info("Shutting down", "grace", grace)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown did not complete in %v: %w", grace, err)
	}
	app.Logger.Info("Teller API stopped gracefully")
	return nil
}
