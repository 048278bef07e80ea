package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain model for an account. PasswordHash and RefreshToken
// never appear in API responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
