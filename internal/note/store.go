package note

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both truly absent notes and notes owned by another
// user; callers cannot tell the two apart.
var ErrNotFound = errors.New("note not found")

// Store defines the persistence interface for notes. Implemented by
// Repository; tests provide an in-memory version.
type Store interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Note, error)
	Create(ctx context.Context, userID uuid.UUID, title string, content *string) (*Note, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*Note, error)
	Update(ctx context.Context, id, userID uuid.UUID, title string, content *string) (*Note, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
