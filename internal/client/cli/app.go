package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mynote-app/mynote/internal/client/captcha"
	"github.com/mynote-app/mynote/internal/client/config"
	"github.com/mynote-app/mynote/internal/client/guard"
	"github.com/mynote-app/mynote/internal/client/services"
	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/mynote-app/mynote/internal/remote/models"
)

// AuthService is the part of services.Authenticator the shell uses.
type AuthService interface {
	Login(ctx context.Context, email, password string, captchaSatisfied bool) (*session.Identity, error)
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (session.Identity, error)
}

// NoteService is the part of services.NoteService the shell uses.
type NoteService interface {
	Create(ctx context.Context, identity session.Identity, title, content string) (*models.Note, error)
	List(ctx context.Context, identity session.Identity, search string) ([]models.Note, error)
	Update(ctx context.Context, identity session.Identity, id, title, content string) error
	Delete(ctx context.Context, identity session.Identity, id string) error
	AdminList(ctx context.Context, identity session.Identity, search string, newestFirst bool) ([]models.Note, error)
}

// URLStore persists the application base URL.
type URLStore interface {
	SetURL(ctx context.Context, url string) error
	URL(ctx context.Context) (string, bool)
}

// Deps are the collaborators of App. In and Out default to the process
// stdin and stdout; Captcha defaults to the global random source.
type Deps struct {
	Config   *config.Config
	Auth     AuthService
	Notes    NoteService
	Sessions URLStore
	Logger   logging.Logger
	Captcha  captcha.Source
	In       io.Reader
	Out      io.Writer
}

type App struct {
	config   *config.Config
	auth     AuthService
	notes    NoteService
	sessions URLStore
	logger   logging.Logger
	captcha  captcha.Source
	reader   *bufio.Reader
	out      io.Writer

	mu       sync.Mutex
	identity session.Identity
	screen   string
}

func NewApp(d Deps) *App {
	in, out := d.In, d.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		config:   d.Config,
		auth:     d.Auth,
		notes:    d.Notes,
		sessions: d.Sessions,
		logger:   d.Logger,
		captcha:  d.Captcha,
		reader:   bufio.NewReader(in),
		out:      &syncWriter{w: out},
	}
}

// syncWriter serializes writes from the REPL and the session watcher.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Run stores the base URL, restores a previous session, starts the session
// watcher and blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	if err := a.sessions.SetURL(ctx, a.config.BaseURL); err != nil {
		a.logger.Warn(ctx, "could not store base url", "error", err)
	}

	fmt.Fprintln(a.out, "Welcome to MyNote (type 'help' for commands)")

	identity, err := a.current(ctx)
	if err != nil {
		a.report(err)
	}
	start := guard.PathLanding
	if home, ok := guard.RoleHome(identity.Role); ok && identity.LoggedIn {
		start = home
	}
	a.report(a.show(ctx, identity, start, nil))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartSessionWatcher(watchCtx, a.config.SessionCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// current validates and caches the stored identity. On ErrSessionExpired
// the returned identity is logged out.
func (a *App) current(ctx context.Context) (session.Identity, error) {
	identity, err := a.auth.Current(ctx)
	a.mu.Lock()
	a.identity = identity
	a.mu.Unlock()
	return identity, err
}

func (a *App) setScreen(path string) {
	a.mu.Lock()
	a.screen = path
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity.LoggedIn
}

// cached returns the identity seen by the last current call.
func (a *App) cached() session.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.screen
	if a.identity.LoggedIn {
		s = fmt.Sprintf("%s %s", a.identity.Email, s)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// report prints the user-facing text of err. Nil is ignored.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(a.out, "Input closed.")
		return
	}
	fmt.Fprintln(a.out, services.UserMessage(err))
}

// StartSessionWatcher checks the session token every interval until ctx is
// done. When the token has expired the stored state is already cleared by
// the authenticator; the watcher tells the user and moves to the sign-in
// screen.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, err := a.current(ctx)
			if errors.Is(err, services.ErrSessionExpired) {
				a.setScreen(guard.PathSignin)
				fmt.Fprintln(a.out, "\nSession expired. Please log in again.")
			}

		case <-ctx.Done():
			return
		}
	}
}
