package repomanager

import (
	"context"
	"database/sql"

	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/remote/repositories/accounts"
	"github.com/mynote-app/mynote/internal/remote/repositories/attempts"
	"github.com/mynote-app/mynote/internal/remote/repositories/notes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Attempts(db dbx.DBTX) attempts.Repository
	Notes(db dbx.DBTX) notes.Repository
}
