package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"docsearch-backend/internal/shared/auth"
)

type recordingPurger struct {
	owners []string
	count  int
	late   []int
	err    error
}

func (p *recordingPurger) DeleteByOwner(_ context.Context, ownerID string) (int, error) {
	p.owners = append(p.owners, ownerID)
	n := p.count
	p.count = 0
	if len(p.late) > 0 {
		n, p.late = p.late[0], p.late[1:]
	}
	return n, p.err
}

func newTestService(t *testing.T, purger DocumentPurger) (*Service, *auth.Issuer) {
	t.Helper()
	issuer, err := auth.NewIssuer("users-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return NewService(NewMemoryRepo(), issuer, purger), issuer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, issuer := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: " alice ", Password: "secret1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "alice" || user.Role != auth.RoleUser {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear text")
	}

	res, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := issuer.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "alice" || claims.UserID != user.ID || claims.Role != auth.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, tt := range []struct{ name, user, pass string }{
		{"wrong password", "alice", "nope-nope"},
		{"unknown user", "mallory", "secret1"},
		{"blank", "", ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.user, tt.pass); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	for _, in := range []RegisterInput{
		{Username: "", Password: "secret1"},
		{Username: "has space", Password: "secret1"},
		{Username: "bob", Password: "123"},
		{Username: "bob", Password: "secret1", Email: "not-an-email"},
	} {
		if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}

	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "secret2"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.SeedAdmin(ctx, "root", "rootpass", "root@example.com")
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = svc.SeedAdmin(ctx, "root", "other", "")
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}
	if created, _ := svc.SeedAdmin(ctx, "nobody", "", ""); created {
		t.Fatalf("blank password must disable seeding")
	}

	admin, err := svc.GetByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if admin.Role != auth.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", admin.Role)
	}
	if _, err := svc.Login(ctx, "root", "rootpass"); err != nil {
		t.Fatalf("original password must still work: %v", err)
	}
}

func TestDeleteCascadesToDocuments(t *testing.T) {
	purger := &recordingPurger{count: 2}
	svc, _ := newTestService(t, purger)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	removed, err := svc.Delete(ctx, user.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 2 || len(purger.owners) != 2 || purger.owners[0] != user.ID || purger.owners[1] != user.ID {
		t.Fatalf("unexpected cascade: removed=%d owners=%v", removed, purger.owners)
	}
	if ok, _ := svc.Exists(ctx, user.ID); ok {
		t.Fatalf("user still exists")
	}
	if _, err := svc.Delete(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteKeepsUserWhenPurgeFails(t *testing.T) {
	purger := &recordingPurger{err: errors.New("store down")}
	svc, _ := newTestService(t, purger)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "dave", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Delete(ctx, user.ID); err == nil {
		t.Fatalf("expected error")
	}
	if ok, _ := svc.Exists(ctx, user.ID); !ok {
		t.Fatalf("user must survive a failed purge")
	}
}

func TestDeleteSweepsDocumentsCreatedDuringCascade(t *testing.T) {
	purger := &recordingPurger{count: 1}
	svc, _ := newTestService(t, purger)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "erin", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	// first sweep removes 1, the second finds 2 uploaded in between
	purger.late = []int{1, 2}
	removed, err := svc.Delete(ctx, user.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 3 || len(purger.owners) != 2 {
		t.Fatalf("expected both sweeps to count, removed=%d calls=%d", removed, len(purger.owners))
	}
}
