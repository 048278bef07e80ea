package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/notes-api/internal/user"
)

// ErrInvalidToken covers every verification failure: malformed, mis-signed,
// and expired tokens all look the same to callers so the response cannot be
// used as an oracle.
var ErrInvalidToken = errors.New("invalid token")

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (uuid.UUID, error)
}

// UserStore is the slice of the credential store the auth flow depends on.
// Implemented by user.Repository; tests provide an in-memory version.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, previous, next string) error
}
