package handlers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/middleware"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/ratelimit"
	"github.com/hongminglow/elearn-be/internal/service"
)

// CookieOptions controls the token cookie set on login.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

// AuthHandler owns the /auth endpoints.
type AuthHandler struct {
	accounts *service.Accounts
	gate     *middleware.Gate
	limiter  ratelimit.Limiter
	cookie   CookieOptions
	logger   logging.Logger
	errorWriter
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(
	accounts *service.Accounts,
	gate *middleware.Gate,
	limiter ratelimit.Limiter,
	cookie CookieOptions,
	logger logging.Logger,
	detail bool,
) *AuthHandler {
	logger = logger.With("handler", "auth")
	return &AuthHandler{
		accounts:    accounts,
		gate:        gate,
		limiter:     limiter,
		cookie:      cookie,
		logger:      logger,
		errorWriter: errorWriter{logger: logger, detail: detail},
	}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Get("/logout", h.handleLogout)
		r.Post("/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require)
			r.Get("/me", h.handleMe)
			r.Put("/profile", h.handleProfile)
			r.Put("/password", h.handlePassword)
		})
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Đăng ký thành công", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	key := clientIP(r) + "|" + strings.ToLower(strings.TrimSpace(req.Email))
	allowed, err := h.limiter.Allow(r.Context(), key)
	if err != nil {
		h.logger.Warn(r.Context(), "login limiter unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		h.logger.Info(r.Context(), "login throttled", "ip", clientIP(r))
		h.fail(w, r, apperr.New(apperr.ErrRateLimited, ""))
		return
	}

	session, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	http.SetCookie(w, h.tokenCookie(session.Token, int(h.cookie.TTL.Seconds())))
	respond.JSON(w, http.StatusOK, "Đăng nhập thành công", dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
		User:      session.User,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.tokenCookie("", -1))
	respond.JSON(w, http.StatusOK, "Đăng xuất thành công", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	respond.JSON(w, http.StatusOK, "", user)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req dto.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.accounts.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Cập nhật thông tin thành công", updated)
}

func (h *AuthHandler) handlePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req dto.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.ChangePassword(r.Context(), user.ID, req); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Đổi mật khẩu thành công", nil)
}

func (h *AuthHandler) tokenCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP middleware
// has already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
