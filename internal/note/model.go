package note

import (
	"time"

	"github.com/google/uuid"
)

// Note is the domain model for a user-owned note. The owner ID is used for
// the ownership filter but never serialized.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	UserID    uuid.UUID `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
