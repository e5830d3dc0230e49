package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/models"
)

// TokenCookie is the cookie that carries the access token for browser clients.
const TokenCookie = "token"

type ctxKey string

const userKey ctxKey = "user"

// Authenticator resolves an access token to the caller's account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// Gate authenticates requests before they reach protected handlers.
type Gate struct {
	auth   Authenticator
	logger logging.Logger
}

func NewGate(auth Authenticator, logger logging.Logger) *Gate {
	return &Gate{auth: auth, logger: logger.With("middleware", "gate")}
}

// Require rejects requests without a valid token for an active account.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.auth.Authenticate(r.Context(), TokenFromRequest(r))
		if err != nil {
			g.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Optional attaches the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := g.auth.Authenticate(r.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.ErrInternal {
				g.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (g *Gate) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.ErrInternal {
		g.logger.Error(r.Context(), "authentication lookup failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respond.Fail(w, err, false)
}

// TokenFromRequest reads a bearer token from the Authorization header,
// falling back to the token cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
