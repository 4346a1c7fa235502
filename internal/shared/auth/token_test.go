package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	token, err := issuer.Issue(Claims{Sub: "alice", UserID: "u-1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "alice" || claims.UserID != "u-1" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp != now.Add(time.Hour).Unix() {
		t.Fatalf("unexpected exp %d", claims.Exp)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	issuer := newTestIssuer(t, time.Now())
	userToken, err := issuer.Issue(Claims{Sub: "bob", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	adminToken, err := issuer.Issue(Claims{Sub: "bob", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userParts := strings.Split(userToken, ".")
	adminParts := strings.Split(adminToken, ".")
	forged := userParts[0] + "." + adminParts[1] + "." + userParts[2]

	if _, err := issuer.Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	issuer := newTestIssuer(t, time.Now())
	other, err := NewIssuer("another-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, err := other.Issue(Claims{Sub: "bob", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, start)
	token, err := issuer.Issue(Claims{Sub: "bob", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	issuer := newTestIssuer(t, time.Now())
	for _, token := range []string{"", "abc", "a.b", "a.b.c.d", tokenHeader + ".!!!.sig"} {
		if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  ", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
