// Package session materializes the authenticated Identity from, and into,
// the encrypted key/value store.
package session

import (
	"errors"
	"slices"
)

// Role is an account role. The string values are the ones stored
// remotely and in the encrypted store.
type Role string

const (
	Admin Role = "Admin"
	User  Role = "User"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole accepts only the known role names.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case Admin, User:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Identity is the logged-in user as seen by the client. The zero value is
// "not logged in".
type Identity struct {
	UserID   string
	Email    string
	Role     Role
	LoggedIn bool
}

// HasRole reports whether the identity's role is one of allowed.
func (i Identity) HasRole(allowed ...Role) bool {
	return slices.Contains(allowed, i.Role)
}

// Keys of the persisted state layout. Every key is stored in both scopes
// except KeyURL, which only lives in the durable one.
const (
	KeyURL        = "url"
	KeyUserID     = "user_id"
	KeyUserEmail  = "user_email"
	KeyUserRole   = "user_role"
	KeyIsLoggedIn = "isLoggedIn"
	KeyToken      = "session_token"
)
