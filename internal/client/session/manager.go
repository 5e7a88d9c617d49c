package session

import (
	"context"
	"errors"

	"github.com/mynote-app/mynote/internal/client/securestore"
	"github.com/mynote-app/mynote/internal/logging"
)

// Manager reads and writes the Identity entries.
type Manager struct {
	store  *securestore.Store
	logger logging.Logger
}

// NewManager returns a Manager persisting the identity through store.
func NewManager(store *securestore.Store, logger logging.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Save persists identity and its session token into both scopes as one unit.
func (m *Manager) Save(ctx context.Context, identity Identity, token string) error {
	return m.store.SetAll(ctx, map[string]any{
		KeyUserID:     identity.UserID,
		KeyUserEmail:  identity.Email,
		KeyUserRole:   string(identity.Role),
		KeyIsLoggedIn: identity.LoggedIn,
		KeyToken:      token,
	})
}

type snapshot struct {
	identity Identity
	role     string
	hasRole  bool
	token    string
}

func (m *Manager) snapshot(ctx context.Context, scope securestore.Scope) snapshot {
	var s snapshot
	s.role, s.hasRole = m.store.GetString(ctx, scope, KeyUserRole)
	s.token, _ = m.store.GetString(ctx, scope, KeyToken)

	if !m.store.GetBool(ctx, scope, KeyIsLoggedIn) {
		return s
	}
	userID, ok := m.store.GetString(ctx, scope, KeyUserID)
	if !ok || userID == "" {
		return s
	}
	role, err := ParseRole(s.role)
	if err != nil {
		return s
	}
	email, _ := m.store.GetString(ctx, scope, KeyUserEmail)
	s.identity = Identity{UserID: userID, Email: email, Role: role, LoggedIn: true}
	return s
}

// Load returns the current Identity. The session scope wins; when it is
// empty the durable scope is used and copied back into the session scope.
//
// A role that differs between the scopes, or a stored role that is not a
// known role, clears both scopes and yields a logged-out Identity. Load
// never fails: anything unreadable counts as absent.
func (m *Manager) Load(ctx context.Context) Identity {
	sess := m.snapshot(ctx, securestore.Session)
	dur := m.snapshot(ctx, securestore.Durable)

	if sess.hasRole && dur.hasRole && sess.role != dur.role {
		m.forceClear(ctx, "role mismatch between scopes")
		return Identity{}
	}
	for _, s := range []snapshot{sess, dur} {
		if s.hasRole && !Role(s.role).Valid() {
			m.forceClear(ctx, "unknown stored role")
			return Identity{}
		}
	}

	if sess.identity.LoggedIn {
		return sess.identity
	}
	if !dur.identity.LoggedIn {
		return Identity{}
	}

	if err := m.rehydrate(ctx, dur); err != nil {
		m.logger.Warn(ctx, "could not restore session scope", "error", err)
	}
	return dur.identity
}

func (m *Manager) rehydrate(ctx context.Context, s snapshot) error {
	entries := map[string]any{
		KeyUserID:     s.identity.UserID,
		KeyUserEmail:  s.identity.Email,
		KeyUserRole:   string(s.identity.Role),
		KeyIsLoggedIn: true,
		KeyToken:      s.token,
	}
	var errs []error
	for k, v := range entries {
		errs = append(errs, m.store.Set(ctx, securestore.Session, k, v))
	}
	return errors.Join(errs...)
}

func (m *Manager) forceClear(ctx context.Context, reason string) {
	m.logger.Warn(ctx, "clearing stored session", "reason", reason)
	if err := m.store.ClearAll(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear stored session", "error", err)
	}
}

// Token returns the stored session token, or "" when there is none.
func (m *Manager) Token(ctx context.Context) string {
	if t, ok := m.store.GetString(ctx, securestore.Session, KeyToken); ok {
		return t
	}
	t, _ := m.store.GetString(ctx, securestore.Durable, KeyToken)
	return t
}

// Clear removes all stored state from both scopes.
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.ClearAll(ctx)
}

// SetURL records the application URL in the durable scope. Nothing is
// written when the stored value already matches.
func (m *Manager) SetURL(ctx context.Context, url string) error {
	if cur, ok := m.store.GetString(ctx, securestore.Durable, KeyURL); ok && cur == url {
		return nil
	}
	return m.store.Set(ctx, securestore.Durable, KeyURL, url)
}

// URL returns the recorded application URL.
func (m *Manager) URL(ctx context.Context) (string, bool) {
	return m.store.GetString(ctx, securestore.Durable, KeyURL)
}
