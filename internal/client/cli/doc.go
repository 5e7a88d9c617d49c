// Package cli provides the interactive MyNote terminal client.
//
// Each REPL command maps to a screen of the application: the landing and
// sign-in pages, the role dashboards, the user's notes and the admin list
// of every note. Navigation goes through the route guard, so a command for
// a screen the user may not see yields the same redirect or access-denied
// notice as typing "go <page>".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// A background session watcher signs the user out when the session token
// expires.
package cli
