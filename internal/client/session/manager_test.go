package session

import (
	"context"
	"testing"

	"github.com/mynote-app/mynote/internal/client/kvstore"
	"github.com/mynote-app/mynote/internal/client/securestore"
	"github.com/mynote-app/mynote/internal/cryptox"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *securestore.Store) {
	t.Helper()
	st := securestore.New(kvstore.NewMemoryStore(), kvstore.NewMemoryStore(),
		cryptox.DeriveKey("test"), logging.NewNopLogger())
	return NewManager(st, logging.NewNopLogger()), st
}

var alice = Identity{UserID: "u1", Email: "a@b.com", Role: User, LoggedIn: true}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, Admin, r)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
	assert.False(t, Role("root").Valid())
	assert.True(t, User.Valid())
}

func TestManager_SaveLoad(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	assert.Equal(t, Identity{}, m.Load(ctx))

	require.NoError(t, m.Save(ctx, alice, "tok"))
	assert.Equal(t, alice, m.Load(ctx))
	assert.Equal(t, "tok", m.Token(ctx))

	for _, scope := range []securestore.Scope{securestore.Durable, securestore.Session} {
		assert.True(t, st.GetBool(ctx, scope, KeyIsLoggedIn))
		role, _ := st.GetString(ctx, scope, KeyUserRole)
		assert.Equal(t, "User", role)
	}
}

func TestManager_LoadRehydratesSessionFromDurable(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	require.NoError(t, m.Save(ctx, alice, "tok"))
	require.NoError(t, st.Clear(ctx, securestore.Session))

	assert.Equal(t, alice, m.Load(ctx))

	id, ok := st.GetString(ctx, securestore.Session, KeyUserID)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
	tok, _ := st.GetString(ctx, securestore.Session, KeyToken)
	assert.Equal(t, "tok", tok)
}

func TestManager_RoleMismatchClearsBothScopes(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	require.NoError(t, m.Save(ctx, alice, "tok"))
	require.NoError(t, st.Set(ctx, securestore.Session, KeyUserRole, "Admin"))

	assert.Equal(t, Identity{}, m.Load(ctx))
	_, ok := st.GetString(ctx, securestore.Durable, KeyUserID)
	assert.False(t, ok)
	_, ok = st.GetString(ctx, securestore.Session, KeyUserID)
	assert.False(t, ok)
}

func TestManager_UnknownRoleClearsBothScopes(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	require.NoError(t, m.Save(ctx, Identity{UserID: "u1", Role: "Root", LoggedIn: true}, "tok"))

	assert.Equal(t, Identity{}, m.Load(ctx))
	assert.False(t, st.GetBool(ctx, securestore.Durable, KeyIsLoggedIn))
}

func TestManager_LegacyStringFlag(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	require.NoError(t, st.Set(ctx, securestore.Session, KeyUserID, "u2"))
	require.NoError(t, st.Set(ctx, securestore.Session, KeyUserRole, "Admin"))
	require.NoError(t, st.Set(ctx, securestore.Session, KeyIsLoggedIn, "true"))

	got := m.Load(ctx)
	assert.True(t, got.LoggedIn)
	assert.Equal(t, Admin, got.Role)
}

func TestManager_MissingUserIDIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	require.NoError(t, st.Set(ctx, securestore.Session, KeyUserRole, "User"))
	require.NoError(t, st.Set(ctx, securestore.Session, KeyIsLoggedIn, true))

	assert.False(t, m.Load(ctx).LoggedIn)
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.Save(ctx, alice, "tok"))
	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, Identity{}, m.Load(ctx))
	assert.Empty(t, m.Token(ctx))
}

type countingStore struct {
	*kvstore.MemoryStore
	sets int
}

func (c *countingStore) Set(ctx context.Context, k, v string) error {
	c.sets++
	return c.MemoryStore.Set(ctx, k, v)
}

func TestManager_SetURLOnlyWritesOnChange(t *testing.T) {
	ctx := context.Background()
	durable := &countingStore{MemoryStore: kvstore.NewMemoryStore()}
	st := securestore.New(durable, kvstore.NewMemoryStore(), cryptox.DeriveKey("test"), logging.NewNopLogger())
	m := NewManager(st, logging.NewNopLogger())

	require.NoError(t, m.SetURL(ctx, "http://localhost"))
	require.NoError(t, m.SetURL(ctx, "http://localhost"))
	assert.Equal(t, 1, durable.sets)

	require.NoError(t, m.SetURL(ctx, "http://example.com"))
	assert.Equal(t, 2, durable.sets)

	u, ok := m.URL(ctx)
	assert.True(t, ok)
	assert.Equal(t, "http://example.com", u)
}

func TestIdentity_HasRole(t *testing.T) {
	assert.True(t, alice.HasRole(User, Admin))
	assert.False(t, alice.HasRole(Admin))
	assert.False(t, alice.HasRole())
}
