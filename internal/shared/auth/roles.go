package auth

import (
	"errors"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Capability is the unit of authorization granted by a role.
type Capability string

const (
	CapRead   Capability = "read"
	CapUpload Capability = "upload"
	CapDelete Capability = "delete"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalizes a role string. Blank input yields RoleUser.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleUser):
		return RoleUser, nil
	default:
		return "", ErrUnknownRole
	}
}

// publicCapabilities are granted to callers that present no token.
var publicCapabilities = []Capability{CapRead}

// CapabilitiesFor maps a role to its capability set.
func CapabilitiesFor(role Role) []Capability {
	switch role {
	case RoleAdmin:
		return []Capability{CapRead, CapUpload, CapDelete}
	case RoleUser:
		return []Capability{CapRead}
	default:
		return nil
	}
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return contains(CapabilitiesFor(r), c)
}

func contains(caps []Capability, c Capability) bool {
	for _, have := range caps {
		if have == c {
			return true
		}
	}
	return false
}
