package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/cheetahbyte/licensemgr/internal/api"
	"github.com/cheetahbyte/licensemgr/internal/config"
	"github.com/cheetahbyte/licensemgr/internal/handlers"
	"github.com/cheetahbyte/licensemgr/internal/licensecrypto"
	"github.com/cheetahbyte/licensemgr/internal/metrics"
	"github.com/cheetahbyte/licensemgr/internal/registry"
	"github.com/cheetahbyte/licensemgr/internal/services"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Server ties the registry, its sweeper and the HTTP API together.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	services services.ServiceStack
	http     *http.Server
}

func New(cfg *config.Config) *Server {
	reg := registry.New(
		registry.WithDefaultTTL(cfg.License.TTL),
		registry.WithKeyFunc(licensecrypto.KeyGenerator(cfg.License.KeyLength)),
	)
	m := metrics.New()
	stack := services.InitServices(reg, m, cfg.Admin)

	opts := api.Options{RequestTimeout: cfg.Server.RequestTimeout}
	if cfg.Metrics.Enabled {
		opts.Metrics = m.Handler()
	}

	r := chi.NewRouter()
	api.Register(r, handlers.New(stack, cfg.Server.MaxBodyBytes), opts)

	return &Server{
		cfg:      cfg,
		registry: reg,
		services: stack,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Registry() *registry.Registry { return s.registry }

func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests within the configured shutdown timeout. The sweeper
// has returned by the time Serve does.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	slog.InfoContext(ctx, "server running",
		"addr", ln.Addr().String(),
		"admin_auth", s.services.Auth().Enabled(),
		"metrics", s.cfg.Metrics.Enabled,
	)

	g.Go(func() error {
		s.services.License().RunSweeper(gctx, s.cfg.License.SweepInterval)
		return nil
	})

	g.Go(func() error {
		defer stop()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down server", "licenses", s.registry.Len())
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
