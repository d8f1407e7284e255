package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// healthHandler answers liveness probes while a run is in flight.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startHealthcheckServer binds the health check listener and serves it in
// the background. The server lives only as long as the run; Run closes it
// via closeHealthcheckServer.
func (a *App) startHealthcheckServer(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to bind health check listener: %w", err)
	}

	boundPort := listener.Addr().(*net.TCPAddr).Port
	a.healthAddr = fmt.Sprintf("127.0.0.1:%d", boundPort)
	a.healthServer = &http.Server{Handler: mux}

	go func() {
		a.logger.Info("🩺 Health check server listening", "address", fmt.Sprintf("http://%s/health", a.healthAddr))
		// Serve returns ErrServerClosed on graceful shutdown; anything else
		// is a real failure.
		if err := a.healthServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// closeHealthcheckServer shuts the health check server down, waiting a
// bounded time for in-flight probes.
func (a *App) closeHealthcheckServer() {
	if a.healthServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Debug("Shutting down health check server.", "address", a.healthAddr)
	if err := a.healthServer.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
	}
	a.healthServer = nil
}
