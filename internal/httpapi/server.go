// Package httpapi exposes the order service over HTTP on a chi router.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/go-chi/chi/v5"
)

type (
	// Shutdown gracefully stops the server.
	Shutdown func(ctx context.Context) error
	// Middleware wraps an http.Handler.
	Middleware func(next http.Handler) http.Handler
	// Handler serves a request and may fail; failures go to the ErrorHandler.
	Handler func(w http.ResponseWriter, r *http.Request) error
	// ErrorHandler writes the response for a failed Handler.
	ErrorHandler func(ctx context.Context, w http.ResponseWriter, err error)

	// Route binds a Handler to a method and path pattern.
	Route struct {
		Method      string
		Path        string
		Handler     Handler
		Middlewares []Middleware
	}
)

// Server is an HTTP server with graceful shutdown.
type Server struct {
	server           http.Server
	router           *chi.Mux
	errorHandler     ErrorHandler
	logger           observability.Logger
	shutdownListener chan error
}

// NewRoute creates a Route.
func NewRoute(method, path string, handler Handler, middlewares ...Middleware) Route {
	return Route{Method: method, Path: path, Handler: handler, Middlewares: middlewares}
}

// New creates a server. Routes and middlewares come from options.
func New(options ...Option) *Server {
	settings := defaultSettings
	for _, option := range options {
		settings = option(settings)
	}

	router := chi.NewRouter()
	s := &Server{
		server: http.Server{
			Addr:              settings.addr,
			Handler:           Chain(router, settings.middlewares...),
			ReadTimeout:       settings.readTimeout,
			WriteTimeout:      settings.writeTimeout,
			IdleTimeout:       settings.idleTimeout,
			ReadHeaderTimeout: settings.readHeaderTimeout,
		},
		router:           router,
		errorHandler:     settings.errorHandler,
		logger:           settings.logger,
		shutdownListener: make(chan error, 1),
	}
	if s.errorHandler == nil {
		s.errorHandler = s.defaultErrorHandler
	}

	for _, route := range settings.routes {
		s.register(route)
	}
	for pattern, handler := range settings.handlers {
		router.Handle(pattern, handler)
	}
	return s
}

// Run starts listening in the background.
func (s *Server) Run() Shutdown {
	go func() {
		err := s.server.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			s.shutdownListener <- nil
			return
		}
		s.shutdownListener <- err
	}()
	return s.server.Shutdown
}

// ShutdownListener receives the listen error, or nil after a clean shutdown.
func (s *Server) ShutdownListener() <-chan error {
	return s.shutdownListener
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// Chain applies middlewares so that the first one is outermost.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

func (s *Server) register(route Route) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := route.Handler(w, r); err != nil {
			s.errorHandler(r.Context(), w, err)
		}
	})
	s.router.Method(route.Method, route.Path, Chain(handler, route.Middlewares...))
}

func (s *Server) defaultErrorHandler(ctx context.Context, w http.ResponseWriter, err error) {
	s.logger.Error(ctx, "request failed",
		observability.String("request_id", RequestIDFrom(ctx)),
		observability.Error(err),
	)
	_ = Error(w, http.StatusInternalServerError, "internal server error")
}
