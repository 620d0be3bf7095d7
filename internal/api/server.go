package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kakuware/ics2000-core/internal/device"
	"github.com/kakuware/ics2000-core/internal/hub"
	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
	"github.com/kakuware/ics2000-core/internal/infrastructure/logging"
	"github.com/kakuware/ics2000-core/internal/service"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Hub is the read-side cache surface the server mirrors.
// *hub.Hub satisfies it; tests substitute a fake.
type Hub interface {
	Devices() []device.Device
	Device(id int) (*device.Device, error)
	Scenes() []device.Scene
	Scene(id int) (*device.Scene, error)
	Stats() hub.Stats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Devices    config.DevicesConfig
	Logger     *logging.Logger
	Hub        Hub
	Dispatcher *service.Dispatcher
	Version    string
}

// Server is the local REST server.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	devCfg     config.DevicesConfig
	logger     *logging.Logger
	hub        Hub
	dispatcher *service.Dispatcher
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("hub is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("service dispatcher is required")
	}

	return &Server{
		cfg:        deps.Config,
		devCfg:     deps.Devices,
		logger:     deps.Logger,
		hub:        deps.Hub,
		dispatcher: deps.Dispatcher,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; a listen failure (port
// in use, etc.) is logged there rather than returned. The server is
// stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("REST server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("REST server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("REST server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down REST server: %w", err)
	}
	return nil
}
