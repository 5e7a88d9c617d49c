// Package securestore is the encrypted key/value store that holds session
// and role state on the client.
//
// It wraps two plain kvstore.Store areas, a durable scope and a session
// scope, and seals every value with AES-256-GCM before it reaches either of
// them. Reads never fail loudly: a missing, tampered or undecryptable value
// reads as absent, so corrupted session state degrades to "logged out".
package securestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mynote-app/mynote/internal/client/kvstore"
	"github.com/mynote-app/mynote/internal/cryptox"
	"github.com/mynote-app/mynote/internal/logging"
)

// Scope selects the storage area.
type Scope int

const (
	// Durable survives restarts of the client.
	Durable Scope = iota
	// Session lives only as long as the current session.
	Session
)

func (s Scope) String() string {
	switch s {
	case Durable:
		return "durable"
	case Session:
		return "session"
	default:
		return "unknown"
	}
}

var errUnknownScope = errors.New("unknown storage scope")

// Store seals values into the durable and session scopes.
type Store struct {
	durable kvstore.Store
	session kvstore.Store
	key     []byte
	logger  logging.Logger
}

// New builds a Store. key must be a 32-byte AES key, normally produced by
// cryptox.DeriveKey from the configured secret.
func New(durable, session kvstore.Store, key []byte, logger logging.Logger) *Store {
	return &Store{durable: durable, session: session, key: key, logger: logger}
}

func (s *Store) area(scope Scope) (kvstore.Store, error) {
	switch scope {
	case Durable:
		return s.durable, nil
	case Session:
		return s.session, nil
	default:
		return nil, errUnknownScope
	}
}

// Set serializes and encrypts v, then stores the ciphertext under key.
func (s *Store) Set(ctx context.Context, scope Scope, key string, v any) error {
	area, err := s.area(scope)
	if err != nil {
		return err
	}
	sealed, err := cryptox.SealString(v, s.key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	if err := area.Set(ctx, key, sealed); err != nil {
		return fmt.Errorf("%s scope: %w", scope, err)
	}
	return nil
}

// Get decrypts the value under key into dst and reports whether it did.
// Absence, read errors and decryption failures all return false.
//
// dst should be a pointer to the stored type. A *any destination receives
// the generic JSON shape, with numbers as json.Number.
func (s *Store) Get(ctx context.Context, scope Scope, key string, dst any) bool {
	area, err := s.area(scope)
	if err != nil {
		return false
	}
	sealed, ok, err := area.Get(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "storage read failed", "scope", scope.String(), "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := cryptox.OpenString(sealed, s.key, dst); err != nil {
		s.logger.Warn(ctx, "discarding undecryptable value", "scope", scope.String(), "key", key)
		return false
	}
	return true
}

// GetString is Get for string values.
func (s *Store) GetString(ctx context.Context, scope Scope, key string) (string, bool) {
	var v string
	if !s.Get(ctx, scope, key, &v) {
		return "", false
	}
	return v, true
}

// GetBool reads a flag. The canonical stored form is a JSON boolean; the
// legacy string "true" is accepted too. Anything else reads as false.
func (s *Store) GetBool(ctx context.Context, scope Scope, key string) bool {
	var v any
	if !s.Get(ctx, scope, key, &v) {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

// Remove deletes key from scope.
func (s *Store) Remove(ctx context.Context, scope Scope, key string) error {
	area, err := s.area(scope)
	if err != nil {
		return err
	}
	return area.Delete(ctx, key)
}

// Clear empties scope.
func (s *Store) Clear(ctx context.Context, scope Scope) error {
	area, err := s.area(scope)
	if err != nil {
		return err
	}
	return area.Clear(ctx)
}

// ClearAll empties both scopes, attempting both even if the first fails.
func (s *Store) ClearAll(ctx context.Context) error {
	return errors.Join(s.durable.Clear(ctx), s.session.Clear(ctx))
}

// SetAll writes the same entries into both scopes as one logical unit.
//
// Every value is sealed before anything is written, each scope receives its
// own ciphertext, and the durable batch goes first. If either batch fails the
// keys are removed from both scopes, so a later read sees the same state in
// each of them.
func (s *Store) SetAll(ctx context.Context, entries map[string]any) error {
	durable, err := s.sealAll(entries)
	if err != nil {
		return err
	}
	session, err := s.sealAll(entries)
	if err != nil {
		return err
	}

	if err := s.durable.SetMany(ctx, durable); err != nil {
		s.rollback(ctx, entries)
		return fmt.Errorf("durable scope: %w", err)
	}
	if err := s.session.SetMany(ctx, session); err != nil {
		s.rollback(ctx, entries)
		return fmt.Errorf("session scope: %w", err)
	}
	return nil
}

func (s *Store) sealAll(entries map[string]any) (map[string]string, error) {
	sealed := make(map[string]string, len(entries))
	for k, v := range entries {
		c, err := cryptox.SealString(v, s.key)
		if err != nil {
			return nil, fmt.Errorf("seal %s: %w", k, err)
		}
		sealed[k] = c
	}
	return sealed, nil
}

func (s *Store) rollback(ctx context.Context, entries map[string]any) {
	for k := range entries {
		if err := s.durable.Delete(ctx, k); err != nil {
			s.logger.Error(ctx, "rollback failed", "scope", Durable.String(), "key", k, "error", err)
		}
		if err := s.session.Delete(ctx, k); err != nil {
			s.logger.Error(ctx, "rollback failed", "scope", Session.String(), "key", k, "error", err)
		}
	}
}
