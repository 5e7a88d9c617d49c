// Package services contains the application services of the MyNote client:
// authentication against the remote store and note management, both gated
// by the route guard.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mynote-app/mynote/internal/client/config"
	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/mynote-app/mynote/internal/client/token"
	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/mynote-app/mynote/internal/remote/models"
	"github.com/mynote-app/mynote/internal/remote/repositories/repomanager"
	"github.com/mynote-app/mynote/internal/throttle"
)

// DB is the remote store handle. *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

// Authenticator signs users up, in and out.
//
// It is the only writer of throttle records and of the stored Identity.
type Authenticator struct {
	db          DB
	repos       repomanager.RepositoryManager
	throttle    *throttle.Throttle
	sessions    *session.Manager
	hasher      PasswordHasher
	tokenSecret []byte
	tokenTTL    time.Duration
	logger      logging.Logger
}

// NewAuthenticator wires the login, sign-up and session flows.
func NewAuthenticator(
	db DB,
	repos repomanager.RepositoryManager,
	th *throttle.Throttle,
	sessions *session.Manager,
	hasher PasswordHasher,
	cfg *config.Config,
	logger logging.Logger,
) *Authenticator {
	return &Authenticator{
		db:          db,
		repos:       repos,
		throttle:    th,
		sessions:    sessions,
		hasher:      hasher,
		tokenSecret: cfg.TokenSecret(),
		tokenTTL:    cfg.SessionTTL,
		logger:      logger,
	}
}

// Login authenticates email/password and stores the resulting Identity.
//
// The checks run in a fixed order: input shape and captcha, account lookup,
// throttle, password. The throttle check, password verification and the
// throttle update all happen inside one throttle.Do, so concurrent logins
// for the same account cannot interleave. A locked account is rejected
// before its password is looked at.
func (a *Authenticator) Login(ctx context.Context, email, password string, captchaSatisfied bool) (*session.Identity, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return nil, invalidInput("Please enter a valid email address.")
	}
	if !captchaSatisfied {
		return nil, invalidInput("Please solve the math problem correctly.")
	}

	account, err := a.repos.Accounts(a.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			a.logger.Warn(ctx, "login failed", "reason", "unknown account")
			return nil, ErrInvalidCredentials
		}
		a.logger.Error(ctx, "account lookup failed", "error", err)
		return nil, storageError("account lookup", err)
	}
	role, err := session.ParseRole(account.Role)
	if err != nil {
		a.logger.Error(ctx, "account has unknown role", "account_id", account.ID, "role", account.Role)
		return nil, storageError("account lookup", err)
	}

	var outcome error
	err = a.throttle.Do(ctx, account.ID, func(ctx context.Context, s *throttle.Session) error {
		st, err := s.Check(ctx)
		if err != nil {
			return err
		}
		if st.Locked {
			outcome = &AccountLockedError{Remaining: st.Remaining}
			return nil
		}

		if !a.hasher.Verify(account.PasswordHash, password) {
			st, err := s.RecordFailure(ctx)
			if err != nil {
				return err
			}
			a.logger.Warn(ctx, "login failed", "reason", "wrong password", "account_id", account.ID, "attempts", st.Attempts)
			outcome = ErrInvalidCredentials
			return nil
		}
		return s.Reset(ctx)
	})
	if err != nil {
		a.logger.Error(ctx, "login throttle unavailable", "account_id", account.ID, "error", err)
		return nil, storageError("login throttle", err)
	}
	if outcome != nil {
		if errors.Is(outcome, ErrAccountLocked) {
			a.logger.Warn(ctx, "login rejected", "reason", "account locked", "account_id", account.ID)
		}
		return nil, outcome
	}

	identity := session.Identity{
		UserID:   account.ID,
		Email:    account.Email,
		Role:     role,
		LoggedIn: true,
	}
	tok, err := token.Issue(account.ID, string(role), a.tokenSecret, a.tokenTTL)
	if err != nil {
		return nil, storageError("issue session token", err)
	}
	if err := a.sessions.Save(ctx, identity, tok); err != nil {
		a.logger.Error(ctx, "could not store session", "account_id", account.ID, "error", err)
		return nil, storageError("store session", err)
	}

	a.logger.Info(ctx, "login succeeded", "account_id", account.ID, "role", string(role))
	return &identity, nil
}

// RegisterInput is the signup form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	// Role defaults to session.User when empty.
	Role session.Role
}

// Register creates an account after checking the password policy.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	email := strings.TrimSpace(in.Email)
	if !ValidEmail(email) {
		return nil, invalidInput("Please enter a valid email.")
	}
	for _, rule := range PasswordRules(in.Password, in.ConfirmPassword) {
		if !rule.OK {
			return nil, invalidInput("Please meet all password requirements and confirm your password.")
		}
	}
	role := in.Role
	if role == "" {
		role = session.User
	}
	if !role.Valid() {
		return nil, invalidInput("Please choose a valid role.")
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return nil, storageError("hash password", err)
	}

	account, err := a.repos.Accounts(a.db).Create(ctx, &models.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         string(role),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrAccountExists
		}
		return nil, storageError("create account", err)
	}

	a.logger.Info(ctx, "account created", "account_id", account.ID, "role", account.Role)
	return account, nil
}

// Logout clears both storage scopes.
func (a *Authenticator) Logout(ctx context.Context) error {
	identity := a.sessions.Load(ctx)
	if err := a.sessions.Clear(ctx); err != nil {
		return storageError("clear session", err)
	}
	if identity.LoggedIn {
		a.logger.Info(ctx, "logout", "account_id", identity.UserID)
	}
	return nil
}

// Current returns the stored Identity after validating its session token.
// An expired, invalid or mismatching token clears the stored state and
// yields ErrSessionExpired with a logged-out Identity.
func (a *Authenticator) Current(ctx context.Context) (session.Identity, error) {
	identity := a.sessions.Load(ctx)
	if !identity.LoggedIn {
		return session.Identity{}, nil
	}

	claims, err := token.Parse(a.sessions.Token(ctx), a.tokenSecret)
	if err == nil && (claims.UserID != identity.UserID || claims.Role != string(identity.Role)) {
		err = common.ErrInvalidToken
	}
	if err != nil {
		a.logger.Warn(ctx, "session ended", "account_id", identity.UserID, "reason", err.Error())
		if cerr := a.sessions.Clear(ctx); cerr != nil {
			a.logger.Error(ctx, "could not clear session", "error", cerr)
		}
		return session.Identity{}, ErrSessionExpired
	}
	return identity, nil
}
