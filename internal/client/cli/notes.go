package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mynote-app/mynote/internal/client/guard"
	"github.com/mynote-app/mynote/internal/client/session"
)

const timeLayout = "2006-01-02 15:04"

// Notes opens the user's note list, filtered by args joined as search text.
func (a *App) Notes(ctx context.Context, args []string) error {
	return a.Go(ctx, guard.PathViewNotes, args...)
}

// Records opens the admin list of every note. The first argument may be
// "newest" (default) or "oldest"; the rest is search text.
func (a *App) Records(ctx context.Context, args []string) error {
	return a.Go(ctx, guard.PathAdminRecord, args...)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func recordArgs(args []string) (newestFirst bool, search string) {
	newestFirst = true
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "oldest":
			newestFirst = false
			args = args[1:]
		case "newest":
			args = args[1:]
		}
	}
	return newestFirst, joinArgs(args)
}

func (a *App) listNotes(ctx context.Context, identity session.Identity, search string) error {
	notes, err := a.notes.List(ctx, identity, search)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notes found.")
		return nil
	}
	for i, n := range notes {
		fmt.Fprintf(a.out, "%d. %s [%s] updated %s\n", i+1, n.Title, n.ID, n.UpdatedAt.Format(timeLayout))
		a.printContent(n.Content)
	}
	return nil
}

func (a *App) listRecords(ctx context.Context, identity session.Identity, search string, newestFirst bool) error {
	notes, err := a.notes.AdminList(ctx, identity, search, newestFirst)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No records found.")
		return nil
	}
	for i, n := range notes {
		fmt.Fprintf(a.out, "%d. %s [%s] by %s, %s, created %s\n",
			i+1, n.Title, n.ID, n.AccountID, n.Status, n.CreatedAt.Format(timeLayout))
		a.printContent(n.Content)
	}
	return nil
}

func (a *App) printContent(content string) {
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(a.out, "     %s\n", line)
	}
}

// signedIn returns the validated identity, or prints a sign-in hint and
// reports false.
func (a *App) signedIn(ctx context.Context) (session.Identity, bool, error) {
	identity, err := a.current(ctx)
	if err != nil {
		return identity, false, err
	}
	if !identity.LoggedIn {
		fmt.Fprintln(a.out, "Please sign in to continue.")
		return identity, false, nil
	}
	return identity, true, nil
}

// AddNote prompts for a title and content and creates a note.
func (a *App) AddNote(ctx context.Context) error {
	identity, ok, err := a.signedIn(ctx)
	if !ok {
		return err
	}

	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content", a.out)
	if err != nil {
		return err
	}

	note, err := a.notes.Create(ctx, identity, title, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Note saved [%s]\n", note.ID)
	return nil
}

// EditNote replaces the title and content of one of the user's notes.
func (a *App) EditNote(ctx context.Context) error {
	identity, ok, err := a.signedIn(ctx)
	if !ok {
		return err
	}

	id, err := getSimpleText(a.reader, "Enter note id", a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Enter new title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter new content", a.out)
	if err != nil {
		return err
	}

	if err := a.notes.Update(ctx, identity, id, title, content); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Note updated.")
	return nil
}

// DeleteNote removes one of the user's notes after confirmation.
func (a *App) DeleteNote(ctx context.Context) error {
	identity, ok, err := a.signedIn(ctx)
	if !ok {
		return err
	}

	id, err := getSimpleText(a.reader, "Enter note id", a.out)
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, "Delete this note? (y/N)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.notes.Delete(ctx, identity, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Note deleted.")
	return nil
}
