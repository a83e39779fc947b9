// Package identity is the boundary to the hosted identity provider. The
// provider owns accounts, credentials, and sessions; this package only
// consumes its REST API.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
)

// Role is the authorization signal stored in a user's metadata. It is a
// closed set: anything else is rejected at the update boundary.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePending Role = "pending"
	RoleUnset   Role = ""
)

// ParseRole validates a raw role string against the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDoctor, RolePending, RoleUnset:
		return Role(s), nil
	}
	return RoleUnset, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Metadata is the free-form metadata bag the provider keeps per user. Only
// the fields this system reads are modeled.
type Metadata struct {
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// User is the provider's identity record.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Metadata  Metadata  `json:"user_metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignInResult carries the session token issued by the provider together
// with the authenticated user.
type SignInResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// Provider is the identity provider boundary. Sign-up creates a pending
// account; role changes go through AdminUpdateUserRole only.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	SignUp(ctx context.Context, email, password, fullName string) (*User, error)
	SignOut(ctx context.Context, accessToken string) error
	AdminListUsers(ctx context.Context) ([]*User, error)
	AdminUpdateUserRole(ctx context.Context, userID string, role Role) (*User, error)
}
