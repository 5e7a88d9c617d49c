package guard

import "github.com/mynote-app/mynote/internal/client/session"

const (
	PathLanding        = "landing"
	PathSignin         = "signin"
	PathSignup         = "signup"
	PathAdminDashboard = "admin-dashboard"
	PathAdminRecord    = "admin-record"
	PathUserDashboard  = "user-dashboard"
	PathViewNotes      = "view-notes"
)

// Route is one screen of the client.
type Route struct {
	Path  string
	Title string
	// Public screens carry no role requirement.
	Public bool
	// HomeIfLoggedIn sends a logged-in user on to their role home.
	HomeIfLoggedIn bool
	Allowed        []session.Role
}

var routes = []Route{
	{Path: PathLanding, Title: "Welcome to MyNote", Public: true},
	{Path: PathSignin, Title: "Sign in to your account", Public: true, HomeIfLoggedIn: true},
	{Path: PathSignup, Title: "Create your account", Public: true},
	{Path: PathAdminDashboard, Title: "Admin Dashboard", Allowed: []session.Role{session.Admin}},
	{Path: PathAdminRecord, Title: "Notes Records", Allowed: []session.Role{session.Admin}},
	{Path: PathUserDashboard, Title: "User Dashboard", Allowed: []session.Role{session.User}},
	{Path: PathViewNotes, Title: "Your Notes", Allowed: []session.Role{session.User}},
}

// Routes lists every screen in display order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds a route by path. Leading and trailing slashes and case are
// ignored, and "" means the landing page.
func Lookup(path string) (Route, bool) {
	p := normalize(path)
	if p == "" {
		p = PathLanding
	}
	for _, r := range routes {
		if r.Path == p {
			return r, true
		}
	}
	return Route{}, false
}
