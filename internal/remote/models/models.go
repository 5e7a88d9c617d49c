// Package models holds the rows of the remote data store.
package models

import "time"

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// LoginAttempt is the throttle record of one account. LockedUntil is nil
// while the account is not locked.
type LoginAttempt struct {
	AccountID   string
	Attempts    int
	LockedUntil *time.Time
}

const NoteStatusActive = "Active"

type Note struct {
	ID        string
	AccountID string
	Title     string
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
