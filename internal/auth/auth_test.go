package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ohfixit/helperd/internal/testutil/testlog"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func fixedValidator(at time.Time) HMACValidator {
	return HMACValidator{Secret: []byte(testSecret), Now: func() time.Time { return at }}
}

func TestValidateAcceptsCurrentToken(t *testing.T) {
	testlog.Start(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.SigningMethodHS256, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID:     "user-1",
		ActionID:   "flush-dns-macos",
		ApprovalID: "approval-9",
		Scope:      "automation:execute",
	})

	claims, err := fixedValidator(now).Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.ActionID != "flush-dns-macos" || claims.ApprovalID != "approval-9" {
		t.Fatalf("claims not decoded: %+v", claims)
	}
	if claims.CallerID() != "user-1" {
		t.Fatalf("caller id: got %q", claims.CallerID())
	}
}

func TestValidateExpiredToken(t *testing.T) {
	testlog.Start(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.SigningMethodHS256, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
		},
	})

	if _, err := fixedValidator(now).Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

// A token expiring exactly at the current second is still accepted:
// the boundary is strictly exp < now.
func TestValidateExpiryBoundary(t *testing.T) {
	testlog.Start(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.SigningMethodHS256, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now),
		},
	})

	if _, err := fixedValidator(now).Validate(token); err != nil {
		t.Fatalf("token with exp == now must pass, got %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	testlog.Start(t)
	now := time.Now()
	token := signToken(t, jwt.SigningMethodHS256, "some-other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	if _, err := fixedValidator(now).Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad signature, got %v", err)
	}
}

// Only HS256 is acceptable; a token declaring any other algorithm is
// rejected before signature verification.
func TestValidateRejectsForeignAlgorithm(t *testing.T) {
	testlog.Start(t)
	now := time.Now()
	token := signToken(t, jwt.SigningMethodHS512, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	if _, err := fixedValidator(now).Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for HS512 token, got %v", err)
	}
}

func TestValidateRejectsMalformedToken(t *testing.T) {
	testlog.Start(t)
	for _, token := range []string{"", "not-a-jwt", "a.b"} {
		if _, err := fixedValidator(time.Now()).Validate(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for %q, got %v", token, err)
		}
	}
}

func TestValidateRejectsMissingExp(t *testing.T) {
	testlog.Start(t)
	token := signToken(t, jwt.SigningMethodHS256, testSecret, Claims{UserID: "user-1"})
	if _, err := fixedValidator(time.Now()).Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for missing exp, got %v", err)
	}
}

func TestValidateEmptySecret(t *testing.T) {
	testlog.Start(t)
	v := HMACValidator{}
	if _, err := v.Validate("anything"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCallerIDPrecedence(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		claims Claims
		want   string
	}{
		{Claims{UserID: "u", ChatID: "c", AnonymousID: "a"}, "u"},
		{Claims{ChatID: "c", AnonymousID: "a"}, "c"},
		{Claims{AnonymousID: "a"}, "a"},
		{Claims{}, ""},
	}
	for _, tc := range cases {
		if got := tc.claims.CallerID(); got != tc.want {
			t.Fatalf("caller id: got %q want %q for %+v", got, tc.want, tc.claims)
		}
	}
}
