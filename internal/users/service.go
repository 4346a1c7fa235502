package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsearch-backend/internal/shared/auth"
	"docsearch-backend/internal/shared/metrics"
	"docsearch-backend/internal/shared/telemetry"
)

const (
	maxUsernameLength = 64
	minPasswordLength = 6
)

// DocumentPurger removes every document owned by a user.
type DocumentPurger interface {
	DeleteByOwner(ctx context.Context, ownerID string) (int, error)
}

// Service owns registration, login and account removal.
type Service struct {
	Repo      Repo
	Tokens    *auth.Issuer
	Documents DocumentPurger

	Now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, tokens *auth.Issuer, documents DocumentPurger) *Service {
	return &Service{Repo: repo, Tokens: tokens, Documents: documents, Now: time.Now}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// LoginResult carries the signed token and the authenticated user.
type LoginResult struct {
	Token string
	User  User
}

// Register creates a USER account. Elevated roles are only assigned by SeedAdmin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	username, email, err := validateRegistration(in)
	if err != nil {
		return User{}, err
	}
	return s.create(ctx, username, in.Password, email, auth.RoleUser)
}

// Login verifies the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.IncLoginFailed()
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.IncLoginFailed()
			telemetry.Warn("auth.login_failed", map[string]any{"username": username, "reason": "unknown_user"})
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		metrics.IncLoginFailed()
		telemetry.Warn("auth.login_failed", map[string]any{"username": username, "reason": "bad_password"})
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(auth.Claims{Sub: user.Username, UserID: user.ID, Role: user.Role})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	telemetry.Info("auth.login", map[string]any{"username": user.Username, "role": string(user.Role)})
	return LoginResult{Token: token, User: user}, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.Repo.List(ctx)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByUsername(ctx, username)
}

// Exists reports whether a user id is registered.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the user's documents first, then the account, then sweeps
// documents uploaded for the user in between. It returns the number of
// documents removed.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	removed := 0
	if s.Documents != nil {
		removed, err = s.Documents.DeleteByOwner(ctx, user.ID)
		if err != nil {
			return removed, fmt.Errorf("delete documents of %s: %w", user.ID, err)
		}
	}
	if err := s.Repo.Delete(ctx, user.ID); err != nil {
		return removed, err
	}
	if s.Documents != nil {
		// documents created between the first sweep and the account removal
		late, err := s.Documents.DeleteByOwner(ctx, user.ID)
		removed += late
		if err != nil {
			return removed, fmt.Errorf("delete late documents of %s: %w", user.ID, err)
		}
	}
	telemetry.Info("users.deleted", map[string]any{
		"user_id":           user.ID,
		"username":          user.Username,
		"documents_removed": removed,
	})
	return removed, nil
}

// SeedAdmin creates the administrator account when it is missing. A blank
// password disables seeding.
func (s *Service) SeedAdmin(ctx context.Context, username, password, email string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}
	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	if _, err := s.create(ctx, username, password, strings.TrimSpace(email), auth.RoleAdmin); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	telemetry.Info("users.admin_seeded", map[string]any{"username": username})
	return true, nil
}

func (s *Service) create(ctx context.Context, username, password, email string, role auth.Role) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validateRegistration(in RegisterInput) (string, string, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return "", "", fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(username) > maxUsernameLength || strings.ContainsAny(username, " \t\r\n") {
		return "", "", fmt.Errorf("%w: username must be at most %d characters without spaces", ErrInvalidInput, maxUsernameLength)
	}
	if len(in.Password) < minPasswordLength {
		return "", "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return "", "", fmt.Errorf("%w: email is invalid", ErrInvalidInput)
		}
	}
	return username, email, nil
}
