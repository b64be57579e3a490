package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Inventory is the read-only view of the router served over HTTP
type Inventory interface {
	Info() (string, string)
	Systems(ctx context.Context, flags backend.Flags) ([]*types.System, error)
	Capabilities(ctx context.Context, system *types.System, flags backend.Flags) (*types.Capabilities, error)
	Disks(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.Disk, error)
	Pools(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.Pool, error)
	Volumes(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.Volume, error)
	Batteries(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.Battery, error)
	FileSystems(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.FileSystem, error)
	Exports(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.NfsExport, error)
	ExportAuth(ctx context.Context, flags backend.Flags) ([]string, error)
}

// Server serves health, metrics and the storage inventory over HTTP
type Server struct {
	inventory Inventory
	router    chi.Router
	http      *http.Server
	logger    zerolog.Logger
}

// NewServer creates a new HTTP server over inv
func NewServer(inv Inventory) *Server {
	s := &Server{
		inventory: inv,
		router:    chi.NewRouter(),
		logger:    log.WithComponent("api"),
	}
	s.http = &http.Server{
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(s.accessLog)

	s.router.Get("/health", metrics.HealthHandler())
	s.router.Get("/ready", metrics.ReadyHandler())
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Get("/systems", s.handleSystems)
		r.Get("/systems/{id}/capabilities", s.handleCapabilities)
		r.Get("/disks", listHandler(s, inv.Disks))
		r.Get("/pools", listHandler(s, inv.Pools))
		r.Get("/volumes", listHandler(s, inv.Volumes))
		r.Get("/batteries", listHandler(s, inv.Batteries))
		r.Get("/fs", listHandler(s, inv.FileSystems))
		r.Get("/exports", listHandler(s, inv.Exports))
		r.Get("/exports/auth", s.handleExportAuth)
	})

	return s
}

// Start listens on addr until Stop is called
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP API listening")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server. A server stopped before Start
// never serves.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the HTTP handler for embedding in other servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// accessLog logs every request at debug level
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
