package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mynote-app/mynote/internal/client/captcha"
	"github.com/mynote-app/mynote/internal/client/guard"
	"github.com/mynote-app/mynote/internal/client/services"
	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/mynote-app/mynote/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignIn opens the sign-in screen. A signed-in user lands on their home
// screen instead.
func (a *App) SignIn(ctx context.Context) error {
	return a.Go(ctx, guard.PathSignin)
}

// SignUp opens the sign-up screen.
func (a *App) SignUp(ctx context.Context) error {
	return a.Go(ctx, guard.PathSignup)
}

// signIn runs the sign-in form: email, password, then the captcha. On
// success the user is taken to their role home.
func (a *App) signIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	problem := captcha.New(a.captcha)
	answer, err := getSimpleText(a.reader, "Solve "+problem.Question(), a.out)
	if err != nil {
		return err
	}

	identity, err := a.auth.Login(ctx, email, string(password), problem.Check(answer))
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.identity = *identity
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Login successful!")
	home, ok := guard.RoleHome(identity.Role)
	if !ok {
		return nil
	}
	return a.show(ctx, *identity, home, nil)
}

// signUp runs the sign-up form and sends the user to sign in afterwards.
func (a *App) signUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	failed := false
	for _, rule := range services.PasswordRules(string(password), string(confirm)) {
		if !rule.OK {
			failed = true
			fmt.Fprintf(a.out, "  [ ] %s\n", rule.Text)
		}
	}
	if failed {
		fmt.Fprintln(a.out, "Please meet all password requirements and confirm your password.")
		return nil
	}

	roleText, err := getSimpleText(a.reader, "Role (User/Admin, empty for User)", a.out)
	if err != nil {
		return err
	}

	_, err = a.auth.Register(ctx, services.RegisterInput{
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
		Role:            parseRoleText(roleText),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. Please sign in.")
	return a.show(ctx, session.Identity{}, guard.PathSignin, nil)
}

// parseRoleText accepts role names case-insensitively. Anything else is
// passed through and rejected by the authenticator.
func parseRoleText(s string) session.Role {
	s = strings.TrimSpace(s)
	for _, r := range []session.Role{session.Admin, session.User} {
		if strings.EqualFold(s, string(r)) {
			return r
		}
	}
	return session.Role(s)
}

// Logout clears the stored session in both scopes.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	a.identity = session.Identity{}
	a.screen = guard.PathLanding
	a.mu.Unlock()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
