package notes

import (
	"context"

	"github.com/mynote-app/mynote/internal/remote/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	// ListByAccount returns the account's notes, newest first, whose title or
	// content contains search (case-insensitive). An empty search matches all.
	ListByAccount(ctx context.Context, accountID, search string) ([]models.Note, error)
	ListAll(ctx context.Context, search string, newestFirst bool) ([]models.Note, error)
	// Update and Delete only touch a note owned by note.AccountID/accountID.
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id, accountID string) error
}
