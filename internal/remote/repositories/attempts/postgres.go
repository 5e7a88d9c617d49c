// Package attempts stores per-account login throttle records in the
// login_attempts table.
package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/remote/models"
)

const selectQuery = `SELECT user_id, attempts, login_until FROM login_attempts
	 WHERE user_id = $1`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetForUpdate locks the account's row until the surrounding transaction
// ends. It returns common.ErrorNotFound when the account has no record.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, accountID string) (*models.LoginAttempt, error) {
	var (
		a     models.LoginAttempt
		until sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, selectQuery+` FOR UPDATE`, accountID).Scan(&a.AccountID, &a.Attempts, &until)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if until.Valid {
		t := until.Time
		a.LockedUntil = &t
	}
	return &a, nil
}

// Upsert creates the record or overwrites both attempts and login_until.
func (r *PostgresRepository) Upsert(ctx context.Context, attempt *models.LoginAttempt) error {
	query :=
		`INSERT INTO login_attempts (user_id, attempts, login_until)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET attempts = EXCLUDED.attempts, login_until = EXCLUDED.login_until`

	var until sql.NullTime
	if attempt.LockedUntil != nil {
		until = sql.NullTime{Time: *attempt.LockedUntil, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, attempt.AccountID, attempt.Attempts, until); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete is a no-op for an account without a record.
func (r *PostgresRepository) Delete(ctx context.Context, accountID string) error {
	query := `DELETE FROM login_attempts WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
