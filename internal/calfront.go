package internal

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/log"
	"github.com/calfront/calfront/internal/relay"
	"github.com/calfront/calfront/internal/server"
)

// CalFront is the complete front application: the page server plus its
// outbound authorization flow and calendar presentation pipeline.
type CalFront struct {
	config     config.Config
	httpServer *server.HTTPServer
}

// NewCalFront creates the front application with all dependencies built
func NewCalFront(ctx context.Context, cfg config.Config) (*CalFront, error) {
	log.LogInfoWithFields("calfront", "Building front application", map[string]any{
		"baseURL":  cfg.Front.BaseURL,
		"calendar": cfg.Calendar.Name,
	})

	if _, err := url.Parse(cfg.Front.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	handlers := server.NewHandlers(cfg)
	httpServer := server.NewHTTPServer(handlers.Routes(), cfg.Front.Addr)

	return &CalFront{
		config:     cfg,
		httpServer: httpServer,
	}, nil
}

// Run starts the front server and blocks until shutdown
func (c *CalFront) Run() error {
	log.LogInfoWithFields("calfront", "Starting front application", map[string]any{
		"addr": c.config.Front.Addr,
	})
	return runServer("calfront", c.httpServer)
}

// Relay is the edge-parity callback application. It shares the front's
// configuration file but runs as its own process so the client secret never
// loads into the front binary's address space.
type Relay struct {
	config     config.Config
	httpServer *server.HTTPServer
}

// NewRelay creates the relay application
func NewRelay(ctx context.Context, cfg config.Config) (*Relay, error) {
	if cfg.Relay == nil {
		return nil, fmt.Errorf("config has no relay section")
	}

	log.LogInfoWithFields("relay", "Building relay application", map[string]any{
		"tokenEndpoint": cfg.Relay.TokenEndpoint,
	})

	handler := relay.New(cfg)
	httpServer := server.NewHTTPServer(handler.Routes(), cfg.Relay.Addr)

	return &Relay{
		config:     cfg,
		httpServer: httpServer,
	}, nil
}

// Run starts the relay server and blocks until shutdown
func (r *Relay) Run() error {
	log.LogInfoWithFields("relay", "Starting relay application", map[string]any{
		"addr": r.config.Relay.Addr,
	})
	return runServer("relay", r.httpServer)
}

// runServer manages a server's lifecycle: serve until a shutdown signal or a
// server error, then drain with a bounded timeout.
func runServer(component string, httpServer *server.HTTPServer) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var shutdownReason string
	select {
	case sig := <-sigChan:
		shutdownReason = fmt.Sprintf("signal %v", sig)
		log.LogInfoWithFields(component, "Received shutdown signal", map[string]any{
			"signal": sig.String(),
		})
	case err := <-errChan:
		shutdownReason = fmt.Sprintf("error: %v", err)
		log.LogErrorWithFields(component, "Shutting down due to error", map[string]any{
			"error": err.Error(),
		})
	case <-ctx.Done():
		shutdownReason = "context cancelled"
	}

	log.LogInfoWithFields(component, "Starting graceful shutdown", map[string]any{
		"reason":  shutdownReason,
		"timeout": "30s",
	})
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.LogErrorWithFields(component, "HTTP server shutdown error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	log.LogInfoWithFields(component, "Application shutdown complete", map[string]any{
		"reason": shutdownReason,
	})
	return nil
}
