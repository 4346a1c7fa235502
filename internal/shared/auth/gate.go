package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated covers missing, malformed, tampered and expired tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the token is valid but the role lacks the capability.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the caller resolved by the gate.
type Identity struct {
	UserID    string
	Username  string
	Role      Role
	Anonymous bool
}

// Gate decides which capability a bearer token may exercise.
type Gate struct {
	Tokens *Issuer
}

// NewGate constructs a Gate.
func NewGate(tokens *Issuer) *Gate {
	return &Gate{Tokens: tokens}
}

// Authorize validates the token and checks the required capability.
// An empty token is an anonymous caller limited to the public capabilities.
func (g *Gate) Authorize(token string, required Capability) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		if contains(publicCapabilities, required) {
			return Identity{Anonymous: true}, nil
		}
		return Identity{}, ErrUnauthenticated
	}

	claims, err := g.Tokens.Verify(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	role, err := ParseRole(string(claims.Role))
	if err != nil || claims.Role == "" {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrInvalidToken)
	}

	id := Identity{UserID: claims.UserID, Username: claims.Sub, Role: role}
	if !role.Can(required) {
		return id, ErrForbidden
	}
	return id, nil
}
