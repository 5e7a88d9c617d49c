// Package throttle limits failed logins per account.
//
// An account moves from Clear (no record) to Warned (fewer than MaxAttempts
// failures) to Locked (a count at or above MaxAttempts, for LockoutDuration).
// Once the lock has passed the record is dropped and the account is Clear
// again.
//
// Every read-modify-write of a record happens inside Do, which holds a
// per-account lock in this process and the row lock (SELECT ... FOR UPDATE)
// in the remote store, so two concurrent failures never both read the same
// attempt count.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/dbx"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/mynote-app/mynote/internal/remote/models"
	"github.com/mynote-app/mynote/internal/remote/repositories/attempts"
)

const (
	MaxAttempts     = 3
	LockoutDuration = 2 * time.Minute
)

// Status is the result of consulting the throttle. Attempts is the stored
// failure count.
type Status struct {
	Locked    bool
	Remaining time.Duration
	Attempts  int
}

// RemainingSeconds rounds the remaining lock time up to whole seconds.
func (s Status) RemainingSeconds() int {
	if s.Remaining <= 0 {
		return 0
	}
	return int((s.Remaining + time.Second - 1) / time.Second)
}

// RemainingMinutes rounds the remaining lock time up to whole minutes.
func (s Status) RemainingMinutes() int {
	return (s.RemainingSeconds() + 59) / 60
}

// AttemptsRepoFactory binds an attempts repository to a connection or
// transaction. repomanager.RepositoryManager.Attempts satisfies it.
type AttemptsRepoFactory func(db dbx.DBTX) attempts.Repository

// Throttle serializes attempt-record updates per account.
type Throttle struct {
	db     dbx.Beginner
	repos  AttemptsRepoFactory
	logger logging.Logger
	now    func() time.Time
	locks  *keyedMutex
}

type Option func(*Throttle)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Throttle) { t.now = now }
}

// New returns a Throttle that opens its transactions on db.
func New(db dbx.Beginner, repos AttemptsRepoFactory, logger logging.Logger, opts ...Option) *Throttle {
	t := &Throttle{
		db:     db,
		repos:  repos,
		logger: logger,
		now:    time.Now,
		locks:  newKeyedMutex(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Do runs fn as the only throttle operation in flight for accountID.
//
// fn runs inside a transaction holding the account's row lock. Returning an
// error from fn rolls the transaction back; outcomes that must be persisted,
// such as a recorded failure, have to be reported through fn's closure with
// a nil error.
func (t *Throttle) Do(ctx context.Context, accountID string, fn func(ctx context.Context, s *Session) error) error {
	unlock := t.locks.lock(accountID)
	defer unlock()

	return dbx.WithTx(ctx, t.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := t.repos(tx)
		rec, err := repo.GetForUpdate(ctx, accountID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("load login attempts: %w", err)
		}
		return fn(ctx, &Session{
			accountID: accountID,
			repo:      repo,
			record:    rec,
			now:       t.now,
			logger:    t.logger,
		})
	})
}

// CheckLock runs Session.Check on its own.
func (t *Throttle) CheckLock(ctx context.Context, accountID string) (st Status, err error) {
	err = t.Do(ctx, accountID, func(ctx context.Context, s *Session) error {
		st, err = s.Check(ctx)
		return err
	})
	return st, err
}

// RecordFailure runs Session.RecordFailure on its own.
func (t *Throttle) RecordFailure(ctx context.Context, accountID string) (st Status, err error) {
	err = t.Do(ctx, accountID, func(ctx context.Context, s *Session) error {
		st, err = s.RecordFailure(ctx)
		return err
	})
	return st, err
}

// Reset runs Session.Reset on its own.
func (t *Throttle) Reset(ctx context.Context, accountID string) error {
	return t.Do(ctx, accountID, func(ctx context.Context, s *Session) error {
		return s.Reset(ctx)
	})
}

// Session is the view of one account's record inside Do.
type Session struct {
	accountID string
	repo      attempts.Repository
	record    *models.LoginAttempt
	now       func() time.Time
	logger    logging.Logger
}

func (s *Session) expired(now time.Time) bool {
	return s.record != nil && s.record.LockedUntil != nil && !now.Before(*s.record.LockedUntil)
}

// Check reports whether the account is locked. A lock that has passed
// deletes the record.
func (s *Session) Check(ctx context.Context) (Status, error) {
	if s.record == nil {
		return Status{}, nil
	}
	now := s.now()
	if s.expired(now) {
		if err := s.repo.Delete(ctx, s.accountID); err != nil {
			return Status{}, fmt.Errorf("drop expired lock: %w", err)
		}
		s.record = nil
		return Status{}, nil
	}
	if s.record.LockedUntil != nil {
		return Status{
			Locked:    true,
			Remaining: s.record.LockedUntil.Sub(now),
			Attempts:  s.record.Attempts,
		}, nil
	}
	return Status{Attempts: s.record.Attempts}, nil
}

// RecordFailure counts one failed attempt and locks the account once the
// count is at or above MaxAttempts. A record whose lock has passed starts over.
func (s *Session) RecordFailure(ctx context.Context) (Status, error) {
	now := s.now()
	next := models.LoginAttempt{AccountID: s.accountID, Attempts: 1}
	if s.record != nil && !s.expired(now) {
		next.Attempts = s.record.Attempts + 1
	}
	if next.Attempts >= MaxAttempts {
		until := now.Add(LockoutDuration)
		next.LockedUntil = &until
	}

	if err := s.repo.Upsert(ctx, &next); err != nil {
		return Status{}, fmt.Errorf("record failed login: %w", err)
	}
	s.record = &next

	if next.LockedUntil != nil {
		s.logger.Warn(ctx, "account locked", "account_id", s.accountID, "attempts", next.Attempts)
		return Status{Locked: true, Remaining: LockoutDuration, Attempts: next.Attempts}, nil
	}
	return Status{Attempts: next.Attempts}, nil
}

// Reset clears the failure count after a successful login.
func (s *Session) Reset(ctx context.Context) error {
	if s.record == nil {
		return nil
	}
	cleared := models.LoginAttempt{AccountID: s.accountID}
	if err := s.repo.Upsert(ctx, &cleared); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	s.record = &cleared
	return nil
}
