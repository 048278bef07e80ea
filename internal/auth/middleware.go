package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/notes-api/internal/httputil"
	"github.com/redmonkez12/notes-api/internal/user"
)

// Identity is the authenticated principal attached to a request. It is an
// explicit result of the gate rather than loose context values, and it
// carries only what handlers may serialize.
type Identity struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

type contextKey string

const identityContextKey contextKey = "identity"

// Middleware guards routes with either a bearer access token or the
// refresh-token session cookie.
type Middleware struct {
	service      *Service
	isProduction bool
}

func NewMiddleware(service *Service, isProduction bool) *Middleware {
	return &Middleware{
		service:      service,
		isProduction: isProduction,
	}
}

// RequireAuth validates the Authorization bearer token and attaches the
// user's identity. A malformed header, bad signature, expired token, and a
// since-deleted user all collapse to the same 401 response.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondUnauthenticated(w)
			return
		}

		userID, err := m.service.tokens.VerifyToken(parts[1])
		if err != nil {
			respondUnauthenticated(w)
			return
		}

		existingUser, err := m.service.users.GetByID(r.Context(), userID)
		if err != nil {
			respondUnauthenticated(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), existingUser)))
	})
}

// RequireSession validates the refresh cookie and attaches the user's
// identity, rejecting the request when that fails.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return m.sessionAuth(true)(next)
}

// OptionalSession attaches an identity when the refresh cookie resolves to
// a user and lets the request through anonymously otherwise.
func (m *Middleware) OptionalSession(next http.Handler) http.Handler {
	return m.sessionAuth(false)(next)
}

func (m *Middleware) sessionAuth(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refreshToken, err := GetRefreshTokenFromCookie(r)
			if err != nil || refreshToken == "" {
				if required {
					httputil.RespondError(w, "No refresh token provided", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			existingUser, lookupErr := m.service.UserFromRefreshToken(r.Context(), refreshToken)
			if lookupErr != nil {
				// Attempt exactly one refresh-and-retry before giving up.
				if pair, refreshErr := m.service.Refresh(r.Context(), refreshToken); refreshErr == nil {
					SetRefreshTokenCookie(w, pair.RefreshToken, m.isProduction, m.service.RefreshTokenDuration())
					existingUser, lookupErr = m.service.UserFromRefreshToken(r.Context(), pair.RefreshToken)
				}
			}

			if lookupErr != nil {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				if errors.Is(lookupErr, user.ErrNotFound) {
					httputil.RespondError(w, "User not found", http.StatusUnauthorized)
					return
				}
				httputil.RespondError(w, "Invalid refresh token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), existingUser)))
		})
	}
}

func respondUnauthenticated(w http.ResponseWriter) {
	httputil.RespondError(w, "User not authenticated", http.StatusUnauthorized)
}

func withIdentity(ctx context.Context, u *user.User) context.Context {
	return ContextWithIdentity(ctx, &Identity{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

// ContextWithIdentity returns a context carrying the given identity. The
// gates use it; tests that exercise handlers directly can too.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the authenticated identity from the request context
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}
