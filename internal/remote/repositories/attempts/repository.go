package attempts

import (
	"context"

	"github.com/mynote-app/mynote/internal/remote/models"
)

type Repository interface {
	// GetForUpdate reads the record with a row lock; it must run inside a
	// transaction.
	GetForUpdate(ctx context.Context, accountID string) (*models.LoginAttempt, error)
	Upsert(ctx context.Context, attempt *models.LoginAttempt) error
	Delete(ctx context.Context, accountID string) error
}
