package httpapi

import (
	"net/http"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/noop"
)

const (
	defaultAddr              = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

var defaultSettings = settings{
	addr:              defaultAddr,
	readTimeout:       defaultReadTimeout,
	writeTimeout:      defaultWriteTimeout,
	idleTimeout:       defaultIdleTimeout,
	readHeaderTimeout: defaultReadHeaderTimeout,
	logger:            noop.NewProvider().Logger(),
}

type (
	Option   func(s settings) settings
	settings struct {
		addr              string
		readTimeout       time.Duration
		writeTimeout      time.Duration
		idleTimeout       time.Duration
		readHeaderTimeout time.Duration
		routes            []Route
		handlers          map[string]http.Handler
		middlewares       []Middleware
		errorHandler      ErrorHandler
		logger            observability.Logger
	}
)

// WithAddr sets the listen address. Default ":8080".
func WithAddr(addr string) Option {
	return func(s settings) settings {
		s.addr = addr
		return s
	}
}

// WithReadTimeout sets the maximum duration for reading a request.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s settings) settings {
		s.readTimeout = timeout
		return s
	}
}

// WithWriteTimeout sets the maximum duration for writing a response.
// Streaming endpoints are cut off when it expires.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s settings) settings {
		s.writeTimeout = timeout
		return s
	}
}

// WithRoutes adds routes.
func WithRoutes(routes ...Route) Option {
	return func(s settings) settings {
		s.routes = append(append([]Route(nil), s.routes...), routes...)
		return s
	}
}

// WithHandler mounts a plain http.Handler, such as a metrics endpoint.
func WithHandler(pattern string, handler http.Handler) Option {
	return func(s settings) settings {
		handlers := make(map[string]http.Handler, len(s.handlers)+1)
		for k, v := range s.handlers {
			handlers[k] = v
		}
		handlers[pattern] = handler
		s.handlers = handlers
		return s
	}
}

// WithMiddlewares adds middlewares applied to every request, in order.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(s settings) settings {
		s.middlewares = append(append([]Middleware(nil), s.middlewares...), middlewares...)
		return s
	}
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(s settings) settings {
		s.errorHandler = handler
		return s
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger observability.Logger) Option {
	return func(s settings) settings {
		if logger != nil {
			s.logger = logger
		}
		return s
	}
}
