package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// FilesPath is the route prefix archives are served under
const FilesPath = "/files/"

// config holds internal HTTP server configuration
type config struct {
	addr string
	dir  string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithDir sets the directory whose archives are served
func WithDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// Server is a local mirror of the toolchain download endpoint
type Server struct {
	*http.Server
}

// NewServer creates a new mirror HTTP server
func NewServer(ctx context.Context, opts ...Option) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
		dir:  ".",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth(cfg.dir))

	// Archives, with Content-Length so clients can report progress
	files := http.StripPrefix(FilesPath, http.FileServer(http.Dir(cfg.dir)))
	router.Get(FilesPath+"*", files.ServeHTTP)
	router.Head(FilesPath+"*", files.ServeHTTP)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
