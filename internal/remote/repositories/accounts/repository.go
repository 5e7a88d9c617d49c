package accounts

import (
	"context"

	"github.com/mynote-app/mynote/internal/remote/models"
)

// Repository reads and writes user_credentials rows. Lookups of a missing
// account return common.ErrorNotFound; a duplicate email on Create returns
// common.ErrorAlreadyExists.
type Repository interface {
	// Create assigns the id and creation time.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}
