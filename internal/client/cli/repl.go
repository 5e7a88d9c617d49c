package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/mynote-app/mynote/internal/client/guard"
	"github.com/mynote-app/mynote/internal/client/session"
)

// printlnFn and printFn are test seams for REPL output.
var printlnFn = fmt.Println
var printFn = fmt.Print

// execIface is the command surface the REPL drives. *App implements it.
type execIface interface {
	cached() session.Identity
	report(err error)

	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	Go(ctx context.Context, path string, args ...string) error
	WhoAmI(ctx context.Context) error
	Notes(ctx context.Context, args []string) error
	AddNote(ctx context.Context) error
	EditNote(ctx context.Context) error
	DeleteNote(ctx context.Context) error
	Records(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// pageCommands are the commands that work on a screen's data.
var pageCommands = map[string][]string{
	guard.PathSignin:      {"signin"},
	guard.PathSignup:      {"signup"},
	guard.PathViewNotes:   {"notes [search]", "addnote", "editnote", "deletenote"},
	guard.PathAdminRecord: {"records [newest|oldest] [search]"},
}

// reachablePages lists the screens identity can open without a redirect or
// a denial, in display order.
func reachablePages(identity session.Identity) []string {
	var pages []string
	for _, r := range guard.Routes() {
		out, err := guard.Navigate(identity, r.Path)
		if err == nil && out.Decision == guard.Render {
			pages = append(pages, r.Path)
		}
	}
	return pages
}

func helpText(identity session.Identity) string {
	pages := reachablePages(identity)

	var cmds []string
	for _, p := range pages {
		cmds = append(cmds, pageCommands[p]...)
	}
	cmds = append(cmds, "go <page>", "whoami")
	if identity.LoggedIn {
		cmds = append(cmds, "logout")
	}
	cmds = append(cmds, "exit")

	return "Available commands: " + strings.Join(cmds, ", ") + "\nPages: " + strings.Join(pages, ", ")
}

// runREPL reads commands from reader until "exit", end of input or ctx is
// done. Errors of a command are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("mynote %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText(a.cached()))
		case "signup":
			a.report(a.SignUp(ctx))
		case "signin", "login":
			a.report(a.SignIn(ctx))
		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <page>")
				continue
			}
			a.report(a.Go(ctx, args[0], args[1:]...))
		case "whoami":
			a.report(a.WhoAmI(ctx))
		case "notes":
			a.report(a.Notes(ctx, args))
		case "addnote":
			a.report(a.AddNote(ctx))
		case "editnote":
			a.report(a.EditNote(ctx))
		case "deletenote":
			a.report(a.DeleteNote(ctx))
		case "records":
			a.report(a.Records(ctx, args))
		case "logout":
			a.report(a.Logout(ctx))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
