package auth

import (
	"errors"
	"testing"
	"time"
)

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapRead, true},
		{RoleAdmin, CapUpload, true},
		{RoleAdmin, CapDelete, true},
		{RoleUser, CapRead, true},
		{RoleUser, CapUpload, false},
		{RoleUser, CapDelete, false},
		{Role("ROOT"), CapRead, false},
	}
	for _, tt := range tests {
		if got := tt.role.Can(tt.cap); got != tt.want {
			t.Fatalf("%s.Can(%s) = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{"": RoleUser, "user": RoleUser, " admin ": RoleAdmin, "ADMIN": RoleAdmin}
	for raw, want := range tests {
		got, err := ParseRole(raw)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestGateAuthorize(t *testing.T) {
	issuer := newTestIssuer(t, time.Now())
	gate := NewGate(issuer)

	adminToken, err := issuer.Issue(Claims{Sub: "root", UserID: "u-admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	userToken, err := issuer.Issue(Claims{Sub: "bob", UserID: "u-bob", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		cap     Capability
		wantErr error
	}{
		{name: "anonymous read", token: "", cap: CapRead},
		{name: "anonymous upload", token: "", cap: CapUpload, wantErr: ErrUnauthenticated},
		{name: "garbage token read", token: "garbage", cap: CapRead, wantErr: ErrUnauthenticated},
		{name: "user read", token: userToken, cap: CapRead},
		{name: "user upload", token: userToken, cap: CapUpload, wantErr: ErrForbidden},
		{name: "user delete", token: userToken, cap: CapDelete, wantErr: ErrForbidden},
		{name: "admin upload", token: adminToken, cap: CapUpload},
		{name: "admin delete", token: adminToken, cap: CapDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := gate.Authorize(tt.token, tt.cap)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.token == "" && !id.Anonymous {
				t.Fatalf("expected anonymous identity")
			}
		})
	}
}

func TestGateExpiredTokenIsUnauthenticated(t *testing.T) {
	start := time.Now()
	issuer := newTestIssuer(t, start)
	token, err := issuer.Issue(Claims{Sub: "root", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	issuer.now = func() time.Time { return start.Add(3 * time.Hour) }

	_, err = NewGate(issuer).Authorize(token, CapRead)
	if !errors.Is(err, ErrUnauthenticated) || !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected unauthenticated+expired, got %v", err)
	}
}
