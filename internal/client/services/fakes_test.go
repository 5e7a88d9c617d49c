package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mynote-app/mynote/internal/client/config"
	"github.com/mynote-app/mynote/internal/client/kvstore"
	"github.com/mynote-app/mynote/internal/client/securestore"
	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/cryptox"
	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/mynote-app/mynote/internal/remote/models"
	"github.com/mynote-app/mynote/internal/remote/repositories/accounts"
	"github.com/mynote-app/mynote/internal/remote/repositories/attempts"
	"github.com/mynote-app/mynote/internal/remote/repositories/notes"
	"github.com/mynote-app/mynote/internal/throttle"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

// ---- fake remote store ----

type fakeAccounts struct {
	mu        sync.Mutex
	byEmail   map[string]models.Account
	seq       int
	lookups   int
	GetErr    error
	CreateErr error
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.seq++
	a.ID = fmt.Sprintf("acc-%d", f.seq)
	a.CreatedAt = time.Now()
	f.byEmail[a.Email] = *a
	return a, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

type fakeAttempts struct {
	mu        sync.Mutex
	records   map[string]models.LoginAttempt
	UpsertErr error
}

func (f *fakeAttempts) GetForUpdate(_ context.Context, id string) (*models.LoginAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (f *fakeAttempts) Upsert(_ context.Context, a *models.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpsertErr != nil {
		return f.UpsertErr
	}
	f.records[a.AccountID] = *a
	return nil
}

func (f *fakeAttempts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeAttempts) record(id string) (models.LoginAttempt, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r, ok
}

type fakeNotes struct {
	mu      sync.Mutex
	notes   []models.Note
	seq     int
	clock   time.Time
	ListErr error
}

func (f *fakeNotes) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.clock = f.clock.Add(time.Minute)
	n.ID = fmt.Sprintf("note-%d", f.seq)
	n.CreatedAt, n.UpdatedAt = f.clock, f.clock
	f.notes = append(f.notes, *n)
	return n, nil
}

func matches(n models.Note, search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q)
}

func (f *fakeNotes) ListByAccount(_ context.Context, accountID, search string) ([]models.Note, error) {
	all, err := f.ListAll(context.Background(), search, true)
	if err != nil {
		return nil, err
	}
	var out []models.Note
	for _, n := range all {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) ListAll(_ context.Context, search string, newestFirst bool) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []models.Note
	for _, n := range f.notes {
		if matches(n, search) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeNotes) Update(_ context.Context, n *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == n.ID && f.notes[i].AccountID == n.AccountID {
			f.notes[i].Title, f.notes[i].Content = n.Title, n.Content
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeNotes) Delete(_ context.Context, id, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id && f.notes[i].AccountID == accountID {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeManager struct {
	accounts *fakeAccounts
	attempts *fakeAttempts
	notes    *fakeNotes
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }
func (m *fakeManager) Attempts(dbx.DBTX) attempts.Repository { return m.attempts }
func (m *fakeManager) Notes(dbx.DBTX) notes.Repository { return m.notes }

// ---- harness ----

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type failingBatch struct {
	*kvstore.MemoryStore
	err error
}

func (f *failingBatch) SetMany(context.Context, map[string]string) error { return f.err }

type harness struct {
	auth     *Authenticator
	notes    *NoteService
	repos    *fakeManager
	store    *securestore.Store
	sessions *session.Manager
	clock    *clock
	cfg      *config.Config
}

type harnessOption func(*harnessSetup)

type harnessSetup struct {
	session kvstore.Store
	ttl     time.Duration
}

func withSessionStore(s kvstore.Store) harnessOption {
	return func(h *harnessSetup) { h.session = s }
}

func withTokenTTL(d time.Duration) harnessOption {
	return func(h *harnessSetup) { h.ttl = d }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	setup := harnessSetup{session: kvstore.NewMemoryStore(), ttl: time.Hour}
	for _, o := range opts {
		o(&setup)
	}

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logging.NewNopLogger()
	repos := &fakeManager{
		accounts: &fakeAccounts{byEmail: map[string]models.Account{}},
		attempts: &fakeAttempts{records: map[string]models.LoginAttempt{}},
		notes:    &fakeNotes{clock: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	clk := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SessionTTL = setup.ttl

	store := securestore.New(kvstore.NewMemoryStore(), setup.session, cryptox.DeriveKey(cfg.EncryptionKey), logger)
	sessions := session.NewManager(store, logger)
	th := throttle.New(db, repos.Attempts, logger, throttle.WithClock(clk.Now))

	return &harness{
		auth:     NewAuthenticator(db, repos, th, sessions, &BcryptHasher{Cost: bcrypt.MinCost}, cfg, logger),
		notes:    NewNoteService(db, repos, logger),
		repos:    repos,
		store:    store,
		sessions: sessions,
		clock:    clk,
		cfg:      cfg,
	}
}

const (
	testEmail    = "a@b.com"
	testPassword = "Passw0rd!"
)

func (h *harness) signup(t *testing.T, email string, role session.Role) *models.Account {
	t.Helper()
	acc, err := h.auth.Register(context.Background(), RegisterInput{
		Email: email, Password: testPassword, ConfirmPassword: testPassword, Role: role,
	})
	require.NoError(t, err)
	return acc
}
