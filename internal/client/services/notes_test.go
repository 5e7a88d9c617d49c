package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotes_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := session.Identity{UserID: "u1", Role: session.User, LoggedIn: true}

	first, err := h.notes.Create(ctx, user, "Welcome Note", "This is your first note.")
	require.NoError(t, err)
	assert.Equal(t, "Active", first.Status)
	_, err = h.notes.Create(ctx, user, " Todo List ", "1. Buy groceries")
	require.NoError(t, err)

	all, err := h.notes.List(ctx, user, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Todo List", all[0].Title, "newest first, trimmed")

	found, err := h.notes.List(ctx, user, "GROCER")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, h.notes.Update(ctx, user, first.ID, "Hello", "edited"))
	found, err = h.notes.List(ctx, user, "edited")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Hello", found[0].Title)

	require.NoError(t, h.notes.Delete(ctx, user, first.ID))
	all, err = h.notes.List(ctx, user, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNotes_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := session.Identity{UserID: "u1", Role: session.User, LoggedIn: true}
	bob := session.Identity{UserID: "u2", Role: session.User, LoggedIn: true}

	n, err := h.notes.Create(ctx, alice, "t", "c")
	require.NoError(t, err)

	assert.ErrorIs(t, h.notes.Update(ctx, bob, n.ID, "t", "hacked"), ErrNotFound)
	assert.ErrorIs(t, h.notes.Delete(ctx, bob, n.ID), ErrNotFound)

	mine, err := h.notes.List(ctx, bob, "")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestNotes_Validation(t *testing.T) {
	h := newHarness(t)
	user := session.Identity{UserID: "u1", Role: session.User, LoggedIn: true}

	_, err := h.notes.Create(context.Background(), user, "  ", "content")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Please fill in both title and content", UserMessage(err))

	err = h.notes.Update(context.Background(), user, "n", "title", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotes_Gates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin := session.Identity{UserID: "a1", Role: session.Admin, LoggedIn: true}
	user := session.Identity{UserID: "u1", Role: session.User, LoggedIn: true}
	loggedOut := session.Identity{}

	_, err := h.notes.Create(ctx, admin, "t", "c")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.notes.List(ctx, loggedOut, "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, h.notes.Delete(ctx, admin, "x"), ErrForbidden)
	_, err = h.notes.AdminList(ctx, user, "", true)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "You are not authorized to view this page.", UserMessage(err))
}

func TestNotes_AdminList(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin := session.Identity{UserID: "a1", Role: session.Admin, LoggedIn: true}

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := h.notes.Create(ctx, session.Identity{UserID: u, Role: session.User, LoggedIn: true}, "note of "+u, "c")
		require.NoError(t, err)
	}

	newest, err := h.notes.AdminList(ctx, admin, "", true)
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "u3", newest[0].AccountID)

	oldest, err := h.notes.AdminList(ctx, admin, "note", false)
	require.NoError(t, err)
	assert.Equal(t, "u1", oldest[0].AccountID)

	h.repos.notes.ListErr = errors.New("timeout")
	_, err = h.notes.AdminList(ctx, admin, "", true)
	require.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "Could not reach the notes store. Please try again.", UserMessage(err))
}

func TestUserMessage_Nil(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
}
