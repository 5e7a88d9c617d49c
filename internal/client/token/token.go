// Package token issues and validates the HS256 session token saved with the
// identity at login. Its expiry drives the client's session watcher.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mynote-app/mynote/internal/common"
)

// Claims carries the account id and role next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

// now is replaced in tests.
var now = time.Now

func Issue(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	issued := now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			Subject:   userID,
		},
		UserID: userID,
		Role:   role,
	})
	return t.SignedString(secret)
}

// Parse validates tok and returns its claims. An expired token yields
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func Parse(tok string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
