package http

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/deepcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxUploadSize is the largest request body accepted by /analyze
const DefaultMaxUploadSize = 260 << 20

// config holds internal HTTP server configuration
type config struct {
	addr          string
	corsOrigins   []string
	maxUploadSize int64
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithCORSOrigins sets the allowed CORS origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *config) {
		c.corsOrigins = origins
	}
}

// WithMaxUploadSize limits the request body size of /analyze
func WithMaxUploadSize(n int64) Option {
	return func(c *config) {
		c.maxUploadSize = n
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	analyzeUC interfaces.AnalyzeUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:          "127.0.0.1:5000",
		corsOrigins:   []string{"*"},
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiDoc, err := loadOpenAPI(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load OpenAPI document")
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	router.Get("/health", handleHealth)
	router.Get("/openapi.yaml", apiDoc.serveYAML)
	router.Get("/openapi.json", apiDoc.serveJSON)

	analyzeHandler := NewAnalyzeHandler(analyzeUC, cfg.maxUploadSize)
	router.Post("/analyze", analyzeHandler.Handle)
	router.Get("/analyses/{requestID}", analyzeHandler.GetRecord)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}

// Shutdown stops the server and flushes pending error reports
func (s *Server) Shutdown(ctx context.Context) error {
	defer sentry.Flush(2 * time.Second)
	return s.Server.Shutdown(ctx)
}
