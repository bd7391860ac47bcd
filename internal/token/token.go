// Package token issues and verifies the signed bearer tokens used for
// stateless API auth. A token carries the user ID as its sole claim and is
// valid for a fixed window from issuance; there is no refresh or revocation.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kundan1729/promptly-server/internal/domain"
)

const defaultTTL = 7 * 24 * time.Hour

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer signing with the process-wide secret.
// Rotating the secret invalidates every outstanding token.
func NewIssuer(secret []byte) *Issuer {
	return &Issuer{
		secret: secret,
		ttl:    defaultTTL,
		now:    time.Now,
	}
}

func (i *Issuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify returns the user ID embedded in a valid token. Any failure —
// wrong signing method, bad signature, malformed token, expired window —
// yields domain.ErrTokenInvalid.
func (i *Issuer) Verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil || !parsed.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", domain.ErrTokenInvalid
	}
	return userID, nil
}
