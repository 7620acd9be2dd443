// Package httpapi exposes a resolution controller over HTTP.
//
// Every action answers 202 with the state as it stands after the request was
// accepted. Resolution finishes asynchronously; clients poll GET /api/v1/state.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/resolution"
	"xdao.co/ledgerview/view"
)

// Resolver is the controller surface the adapter drives.
type Resolver interface {
	State() resolution.State
	DraftInput() string
	UpdateDraftInput(raw string)
	SubmitDraft()
	RequestExplicit(raw string)
	RequestRandom()
	RequestParent(slot entity.ParentSlot) bool
}

var _ Resolver = (*resolution.Controller)(nil)

type Options struct {
	Addr   string
	Logger *slog.Logger
	// Gatherer backs GET /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	Card     view.Options
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(res Resolver, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      NewRouter(res, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// NewRouter builds the route tree without binding a listener.
func NewRouter(res Resolver, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{res: res, card: opts.Card}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:             slog.LevelDebug,
		Schema:            httplog.SchemaECS.Concise(true),
		LogRequestHeaders: []string{},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.getState)
		r.Get("/card", h.getCard)
		r.Put("/draft", h.putDraft)
		r.Post("/fetch", h.fetch)
		r.Post("/random", h.random)
		r.Post("/parent/{which}", h.parent)
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	s.logger.Error("server error", "err", err)
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("server shutdown error", "err", err)
	}
	return err
}
