package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrBadCredentials    = errors.New("invalid username or password")
	// ErrInvalid wraps all validation failures.
	ErrInvalid = errors.New("invalid user")
)

// User maps to the app_user table. The role is informational only; no
// route checks it.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     *string   `db:"full_name" json:"full_name,omitempty"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RegisterRequest is the wire shape of an account registration.
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
}

func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}
	return nil
}

// LoginRequest is the wire shape of a login attempt.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
