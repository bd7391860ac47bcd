package token

import (
	"errors"
	"testing"
	"time"

	"github.com/kundan1729/promptly-server/internal/domain"
)

const testSecret = "token-test-secret-at-least-32-chars!"

func TestIssueVerify_Roundtrip(t *testing.T) {
	issuer := NewIssuer([]byte(testSecret))

	signed, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("userID = %q, want %q", userID, "user-42")
	}
}

func TestVerify_ExpiredAfterSevenDays(t *testing.T) {
	issuer := NewIssuer([]byte(testSecret))

	signed, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Just inside the window.
	issuer.now = func() time.Time { return time.Now().Add(7*24*time.Hour - time.Minute) }
	if _, err := issuer.Verify(signed); err != nil {
		t.Errorf("token should still verify just before expiry: %v", err)
	}

	// Past the window.
	issuer.now = func() time.Time { return time.Now().Add(7*24*time.Hour + time.Minute) }
	if _, err := issuer.Verify(signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid after expiry, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := NewIssuer([]byte(testSecret)).Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewIssuer([]byte("a-completely-different-32-char-key!!"))
	if _, err := other.Verify(signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid for wrong secret, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	issuer := NewIssuer([]byte(testSecret))

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(raw); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("Verify(%q): want ErrTokenInvalid, got %v", raw, err)
		}
	}
}
