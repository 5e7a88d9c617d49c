// Package notes stores user notes in the notes table.
package notes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/remote/models"
)

const columns = `id, user_id, title, content, status, created_at, updated_at`

// newID is replaced in tests.
var newID = func() string { return uuid.NewString() }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into an ILIKE pattern matching it as a
// literal substring.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO notes (id, user_id, title, content, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`

	if note.Status == "" {
		note.Status = models.NoteStatusActive
	}
	id := newID()
	err := r.db.QueryRowContext(ctx, query, id, note.AccountID, note.Title, note.Content, note.Status).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	note.ID = id
	return note, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID, search string) ([]models.Note, error) {
	query := `SELECT ` + columns + ` FROM notes
		 WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
		 ORDER BY created_at DESC`

	return r.list(ctx, query, accountID, containsPattern(search))
}

func (r *PostgresRepository) ListAll(ctx context.Context, search string, newestFirst bool) ([]models.Note, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	query := `SELECT ` + columns + ` FROM notes
		 WHERE title ILIKE $1 OR content ILIKE $1
		 ORDER BY created_at ` + order

	return r.list(ctx, query, containsPattern(search))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Title, &n.Content, &n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) error {
	query :=
		`UPDATE notes SET title = $3, content = $4, status = $5, updated_at = now()
		 WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, note.ID, note.AccountID, note.Title, note.Content, note.Status)
	return affectedOne(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, accountID string) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, accountID)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
