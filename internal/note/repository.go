package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/notes-api/internal/database"
)

// Repository handles note persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's notes, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Note, error) {
	var dbNotes []database.Note
	err := r.db.NewSelect().
		Model(&dbNotes).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]Note, 0, len(dbNotes))
	for i := range dbNotes {
		notes = append(notes, *mapDBNoteToModel(&dbNotes[i]))
	}

	return notes, nil
}

// Create inserts a new note owned by the given user.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, title string, content *string) (*Note, error) {
	dbNote := &database.Note{
		Title:   title,
		Content: content,
		UserID:  userID,
	}

	_, err := r.db.NewInsert().
		Model(dbNote).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return mapDBNoteToModel(dbNote), nil
}

// GetForUser retrieves a note by (id, userID) jointly. A note ID alone
// never authorizes access.
func (r *Repository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*Note, error) {
	dbNote := new(database.Note)
	err := r.db.NewSelect().
		Model(dbNote).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return mapDBNoteToModel(dbNote), nil
}

// Update rewrites a note's title and content, filtered by owner.
func (r *Repository) Update(ctx context.Context, id, userID uuid.UUID, title string, content *string) (*Note, error) {
	dbNote := new(database.Note)
	result, err := r.db.NewUpdate().
		Model(dbNote).
		Set("title = ?", title).
		Set("content = ?", content).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBNoteToModel(dbNote), nil
}

// Delete removes a note, filtered by owner.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Note)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBNoteToModel converts database model to domain model
func mapDBNoteToModel(dbn *database.Note) *Note {
	return &Note{
		ID:        dbn.ID,
		Title:     dbn.Title,
		Content:   dbn.Content,
		UserID:    dbn.UserID,
		CreatedAt: dbn.CreatedAt,
		UpdatedAt: dbn.UpdatedAt,
	}
}
