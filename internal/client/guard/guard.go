// Package guard decides what happens when the user navigates to a screen.
// All role checks of the client go through Decide.
package guard

import (
	"errors"
	"strings"

	"github.com/mynote-app/mynote/internal/client/session"
)

type Decision int

const (
	Render Decision = iota
	RedirectToLogin
	RedirectToRoleHome
	DenyWithNotice
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToRoleHome:
		return "redirect-to-role-home"
	case DenyWithNotice:
		return "deny-with-notice"
	default:
		return "unknown"
	}
}

// Decide maps an identity and the roles a screen allows to a Decision. It
// has no side effects and never fails.
func Decide(identity session.Identity, allowed []session.Role) Decision {
	if !identity.LoggedIn {
		return RedirectToLogin
	}
	if !identity.HasRole(allowed...) {
		return DenyWithNotice
	}
	return Render
}

// RoleHome is the landing screen of role.
func RoleHome(role session.Role) (string, bool) {
	switch role {
	case session.Admin:
		return PathAdminDashboard, true
	case session.User:
		return PathUserDashboard, true
	default:
		return "", false
	}
}

// AfterNotice is the transition taken once a denial notice has been
// acknowledged.
func AfterNotice(identity session.Identity) (Decision, string) {
	if home, ok := RoleHome(identity.Role); ok && identity.LoggedIn {
		return RedirectToRoleHome, home
	}
	return RedirectToLogin, PathSignin
}

var ErrUnknownRoute = errors.New("page not found")

// Outcome is the result of Navigate. Target is the screen to show next; it is
// empty for DenyWithNotice, where the caller shows the notice and then calls
// AfterNotice.
type Outcome struct {
	Decision Decision
	Target   string
}

// Navigate resolves path and applies the guard to it.
func Navigate(identity session.Identity, path string) (Outcome, error) {
	route, ok := Lookup(path)
	if !ok {
		return Outcome{}, ErrUnknownRoute
	}

	if route.Public {
		if route.HomeIfLoggedIn && identity.LoggedIn {
			if home, ok := RoleHome(identity.Role); ok {
				return Outcome{Decision: RedirectToRoleHome, Target: home}, nil
			}
		}
		return Outcome{Decision: Render, Target: route.Path}, nil
	}

	switch d := Decide(identity, route.Allowed); d {
	case Render:
		return Outcome{Decision: d, Target: route.Path}, nil
	case RedirectToLogin:
		return Outcome{Decision: d, Target: PathSignin}, nil
	default:
		return Outcome{Decision: d}, nil
	}
}

func normalize(path string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(path), "/"))
}
