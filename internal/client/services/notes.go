package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mynote-app/mynote/internal/client/guard"
	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/mynote-app/mynote/internal/remote/models"
	"github.com/mynote-app/mynote/internal/remote/repositories/repomanager"
)

// NoteService manages notes on behalf of an Identity. Users work on their
// own notes through the view-notes screen; admins browse every note through
// the admin-record screen.
type NoteService struct {
	db     dbx.DBTX
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewNoteService(db dbx.DBTX, repos repomanager.RepositoryManager, logger logging.Logger) *NoteService {
	return &NoteService{db: db, repos: repos, logger: logger}
}

// gate applies the guard of the screen at path to identity.
func gate(identity session.Identity, path string) error {
	route, ok := guard.Lookup(path)
	if !ok {
		return ErrForbidden
	}
	if guard.Decide(identity, route.Allowed) != guard.Render {
		return ErrForbidden
	}
	return nil
}

func noteInput(title, content string) (string, string, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", invalidInput("Please fill in both title and content")
	}
	return title, content, nil
}

func (s *NoteService) Create(ctx context.Context, identity session.Identity, title, content string) (*models.Note, error) {
	if err := gate(identity, guard.PathViewNotes); err != nil {
		return nil, err
	}
	title, content, err := noteInput(title, content)
	if err != nil {
		return nil, err
	}

	note, err := s.repos.Notes(s.db).Create(ctx, &models.Note{
		AccountID: identity.UserID,
		Title:     title,
		Content:   content,
		Status:    models.NoteStatusActive,
	})
	if err != nil {
		return nil, storageError("note create", err)
	}
	s.logger.Debug(ctx, "note created", "account_id", identity.UserID, "note_id", note.ID)
	return note, nil
}

// List returns the identity's notes matching search, newest first.
func (s *NoteService) List(ctx context.Context, identity session.Identity, search string) ([]models.Note, error) {
	if err := gate(identity, guard.PathViewNotes); err != nil {
		return nil, err
	}
	notes, err := s.repos.Notes(s.db).ListByAccount(ctx, identity.UserID, strings.TrimSpace(search))
	if err != nil {
		return nil, storageError("note list", err)
	}
	return notes, nil
}

func (s *NoteService) Update(ctx context.Context, identity session.Identity, id, title, content string) error {
	if err := gate(identity, guard.PathViewNotes); err != nil {
		return err
	}
	title, content, err := noteInput(title, content)
	if err != nil {
		return err
	}

	err = s.repos.Notes(s.db).Update(ctx, &models.Note{
		ID:        id,
		AccountID: identity.UserID,
		Title:     title,
		Content:   content,
		Status:    models.NoteStatusActive,
	})
	return s.ownedResult(err, "note update")
}

func (s *NoteService) Delete(ctx context.Context, identity session.Identity, id string) error {
	if err := gate(identity, guard.PathViewNotes); err != nil {
		return err
	}
	return s.ownedResult(s.repos.Notes(s.db).Delete(ctx, id, identity.UserID), "note delete")
}

// ownedResult maps a repository result for an owner-scoped write. A note
// that does not exist and a note owned by someone else look the same.
func (s *NoteService) ownedResult(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return ErrNotFound
	default:
		return storageError(op, err)
	}
}

// AdminList returns every note matching search for an admin.
func (s *NoteService) AdminList(ctx context.Context, identity session.Identity, search string, newestFirst bool) ([]models.Note, error) {
	if err := gate(identity, guard.PathAdminRecord); err != nil {
		return nil, err
	}
	notes, err := s.repos.Notes(s.db).ListAll(ctx, strings.TrimSpace(search), newestFirst)
	if err != nil {
		return nil, storageError("note list all", err)
	}
	return notes, nil
}
