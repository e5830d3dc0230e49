package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/elearn-be/internal/auth"
	"github.com/hongminglow/elearn-be/internal/config"
	"github.com/hongminglow/elearn-be/internal/filestore"
	"github.com/hongminglow/elearn-be/internal/http/handlers"
	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/middleware"
	"github.com/hongminglow/elearn-be/internal/ratelimit"
	"github.com/hongminglow/elearn-be/internal/service"
	"github.com/hongminglow/elearn-be/internal/storage"
)

// Deps are the long-lived collaborators the HTTP server is built from.
type Deps struct {
	Store   storage.Store
	Files   filestore.Store
	Limiter ratelimit.Limiter
	Logger  logging.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the full route tree.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	accounts := service.NewAccounts(deps.Store, tokens, hasher, deps.Logger)
	documents := service.NewDocuments(deps.Store, deps.Store, deps.Files, service.PreviewPolicy{
		PageLimit:  cfg.PreviewPageLimit,
		SlideLimit: cfg.PreviewSlideLimit,
	}, deps.Logger)
	gate := middleware.NewGate(accounts, deps.Logger)
	detail := cfg.Development()

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Logging(deps.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "Không tìm thấy đường dẫn")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Phương thức không được hỗ trợ")
	})

	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(accounts, gate, deps.Limiter, handlers.CookieOptions{
		Secure: cfg.CookieSecure,
		TTL:    tokens.TTL(),
	}, deps.Logger, detail).Register(r)
	handlers.NewDocumentHandler(documents, gate, deps.Logger, detail).Register(r)
	handlers.NewAdminHandler(accounts, documents, gate, deps.Logger, detail).Register(r)

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
