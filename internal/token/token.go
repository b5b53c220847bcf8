// Package token mints and validates the signed, expiring tokens that gate
// every credential flow: bearer access tokens, email verification tokens and
// password reset tokens. The purpose of a token is embedded in its signed
// claims, so a token minted for one flow is rejected by every other flow.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a token to exactly one flow.
type Purpose string

const (
	// PurposeAccess marks short-lived bearer credentials issued on login.
	// Subject is the user id in decimal form.
	PurposeAccess Purpose = "access"
	// PurposeVerifyEmail marks tokens mailed out to confirm control of an
	// address. Subject is the user id in decimal form.
	PurposeVerifyEmail Purpose = "verify_email"
	// PurposeResetPassword marks tokens authorizing a password overwrite.
	// Subject is the account email, matching the reset flow's
	// lookup-by-email.
	PurposeResetPassword Purpose = "reset_password"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpired         = errors.New("token expired")
	ErrPurposeMismatch = errors.New("token purpose mismatch")
)

// Claims carries the registered JWT claims plus the purpose binding.
type Claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose"`
}

// Engine signs and validates tokens with a process-wide secret and a fixed
// TTL per purpose. It is immutable after construction and safe for
// concurrent use.
type Engine struct {
	secret []byte
	ttls   map[Purpose]time.Duration
}

// NewEngine builds an engine from the signing secret and the externally
// configured TTL of each purpose.
func NewEngine(secret []byte, accessTTL, verifyTTL, resetTTL time.Duration) *Engine {
	return &Engine{
		secret: secret,
		ttls: map[Purpose]time.Duration{
			PurposeAccess:        accessTTL,
			PurposeVerifyEmail:   verifyTTL,
			PurposeResetPassword: resetTTL,
		},
	}
}

// Issue mints an HS256-signed token binding subject and purpose, expiring
// after the purpose's configured TTL.
func (e *Engine) Issue(subject string, purpose Purpose) (string, error) {
	ttl, ok := e.ttls[purpose]
	if !ok {
		return "", fmt.Errorf("unknown token purpose %q", purpose)
	}

	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.secret)
}

// Validate checks signature, expiry and purpose, in that order of visibility:
// a tampered or malformed token yields ErrInvalidToken, an elapsed TTL yields
// ErrExpired, and a signed-but-misdirected token yields ErrPurposeMismatch.
// On success it returns the embedded subject.
func (e *Engine) Validate(tokenString string, expected Purpose) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return e.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalidToken
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	if claims.Purpose != expected {
		return "", ErrPurposeMismatch
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
