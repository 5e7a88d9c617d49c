package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mynote-app/mynote/internal/client/guard"
	"github.com/mynote-app/mynote/internal/client/services"
	"github.com/mynote-app/mynote/internal/client/session"
)

// Go navigates to path. args are passed to the screen, e.g. the search text
// of view-notes.
func (a *App) Go(ctx context.Context, path string, args ...string) error {
	identity, err := a.current(ctx)
	if err != nil {
		a.report(err)
	}

	out, err := guard.Navigate(identity, path)
	if errors.Is(err, guard.ErrUnknownRoute) {
		fmt.Fprintf(a.out, "Page not found: %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}

	switch out.Decision {
	case guard.DenyWithNotice:
		fmt.Fprintln(a.out, services.UserMessage(services.ErrForbidden))
		_, target := guard.AfterNotice(identity)
		return a.show(ctx, identity, target, nil)
	case guard.RedirectToLogin:
		fmt.Fprintln(a.out, "Please sign in to continue.")
		return a.show(ctx, identity, out.Target, nil)
	case guard.RedirectToRoleHome:
		return a.show(ctx, identity, out.Target, nil)
	default:
		return a.show(ctx, identity, out.Target, args)
	}
}

// show renders the screen at path. The guard has already been applied.
func (a *App) show(ctx context.Context, identity session.Identity, path string, args []string) error {
	route, ok := guard.Lookup(path)
	if !ok {
		return guard.ErrUnknownRoute
	}
	a.setScreen(route.Path)
	fmt.Fprintf(a.out, "== %s ==\n", route.Title)

	switch route.Path {
	case guard.PathLanding:
		fmt.Fprintln(a.out, "Keep your notes in one place. Type 'signin' or 'signup' to get started.")
	case guard.PathSignin:
		return a.signIn(ctx)
	case guard.PathSignup:
		return a.signUp(ctx)
	case guard.PathAdminDashboard:
		fmt.Fprintf(a.out, "Signed in as %s (%s).\n", identity.Email, identity.Role)
		fmt.Fprintln(a.out, "Type 'records' to browse every note.")
	case guard.PathUserDashboard:
		fmt.Fprintf(a.out, "Signed in as %s (%s).\n", identity.Email, identity.Role)
		fmt.Fprintln(a.out, "Type 'notes' to see your notes or 'addnote' to write one.")
	case guard.PathViewNotes:
		return a.listNotes(ctx, identity, joinArgs(args))
	case guard.PathAdminRecord:
		newest, search := recordArgs(args)
		return a.listRecords(ctx, identity, search, newest)
	}
	return nil
}

// WhoAmI prints the stored identity and the recorded application URL.
func (a *App) WhoAmI(ctx context.Context) error {
	identity, err := a.current(ctx)
	if err != nil {
		return err
	}
	if identity.LoggedIn {
		fmt.Fprintf(a.out, "%s (%s), id %s\n", identity.Email, identity.Role, identity.UserID)
	} else {
		fmt.Fprintln(a.out, "Not signed in.")
	}
	if url, ok := a.sessions.URL(ctx); ok {
		fmt.Fprintf(a.out, "Application: %s\n", url)
	}
	return nil
}
