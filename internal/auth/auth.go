// Package auth validates the scoped bearer credentials issued by the
// remote authority.
//
// It intentionally avoids policy decisions and storage concerns:
// validation is a pure function of the token, the configured secret,
// and the clock.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims are the fields carried by a scoped execution credential.
// ActionID and Scope are decoded but not cross-checked against the
// action actually requested; the authority binds them at issue time.
type Claims struct {
	jwt.RegisteredClaims
	ChatID      string `json:"chat_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	AnonymousID string `json:"anonymous_id,omitempty"`
	ActionID    string `json:"action_id"`
	ApprovalID  string `json:"approval_id"`
	Scope       string `json:"scope"`
}

// CallerID returns the best available caller identity from the claims.
func (c Claims) CallerID() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.ChatID != "":
		return c.ChatID
	default:
		return c.AnonymousID
	}
}

// Validator validates a bearer credential and returns its claims.
type Validator interface {
	Validate(token string) (Claims, error)
}

// HMACValidator checks HS256 signatures against a shared secret.
// Tokens declaring any other signing algorithm are rejected outright.
type HMACValidator struct {
	Secret []byte
	Now    func() time.Time
}

func NewHMACValidator(secret string) HMACValidator {
	return HMACValidator{Secret: []byte(secret)}
}

func (v HMACValidator) Validate(token string) (Claims, error) {
	if len(v.Secret) == 0 {
		return Claims{}, ErrUnauthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked below by hand: the boundary is exp < now,
		// strictly, so a token expiring exactly at now still passes.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrUnauthorized, mapReason(err))
	}

	if claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing exp claim", ErrUnauthorized)
	}

	now := v.Now
	if now == nil {
		now = time.Now
	}
	// Strictly less-than on whole seconds: a token expiring exactly at
	// now is still accepted.
	if claims.ExpiresAt.Unix() < now().Unix() {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func mapReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable token"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	default:
		return "invalid token"
	}
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) (Claims, error)

func (f FuncValidator) Validate(token string) (Claims, error) {
	return f(token)
}
