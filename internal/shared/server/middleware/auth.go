package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/shared/auth"
	"docsearch-backend/internal/shared/server/respond"
)

const (
	identityKey = "identity"
	usernameKey = "username"
	roleKey     = "role"
)

// Require authorizes the request for one capability and stores the caller identity.
func Require(gate *auth.Gate, capability auth.Capability) gin.HandlerFunc {
	return require(gate, capability, true)
}

// RequireSignedIn is Require without the anonymous fallback.
func RequireSignedIn(gate *auth.Gate, capability auth.Capability) gin.HandlerFunc {
	return require(gate, capability, false)
}

func require(gate *auth.Gate, capability auth.Capability, allowAnonymous bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		id, err := gate.Authorize(token, capability)
		switch {
		case errors.Is(err, auth.ErrForbidden):
			setIdentity(c, id)
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient role", nil)
			return
		case err != nil:
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if id.Anonymous && !allowAnonymous {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// bearerToken returns the token from an Authorization header. An absent header
// yields an empty token; a header without the Bearer scheme is rejected.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", true
	}
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
	if id.Anonymous {
		return
	}
	c.Set(usernameKey, id.Username)
	c.Set(roleKey, string(id.Role))
}

// IdentityFromContext fetches the identity stored by Require.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	if c == nil {
		return auth.Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := val.(auth.Identity)
	return id, ok
}

// UsernameFromContext fetches the authenticated username, if any.
func UsernameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(usernameKey)
}
