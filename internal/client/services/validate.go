package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is the local@domain.tld shape check.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// PasswordRule is one line of the signup password policy.
type PasswordRule struct {
	Text string
	OK   bool
}

// PasswordRules evaluates the signup policy against password and its
// confirmation.
func PasswordRules(password, confirm string) []PasswordRule {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case unicode.IsLower(r) && r < unicode.MaxASCII:
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return []PasswordRule{
		{"At least 8 characters", utf8.RuneCountInString(password) >= 8},
		{"At most 72 bytes", len(password) <= maxPasswordBytes},
		{"One uppercase letter", upper},
		{"One lowercase letter", lower},
		{"One number", digit},
		{"One special character", special},
		{"Passwords match", password != "" && password == confirm},
	}
}
