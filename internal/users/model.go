package users

import (
	"time"

	"docsearch-backend/internal/shared/auth"
)

// User is an account that can sign in. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Email        string    `db:"email"`
	Role         auth.Role `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}
