// Package auth provides the identity/session boundary: email/password login,
// account creation, and password reset requests. Gameplay only ever sees the
// resulting identity (or a failure message); auth errors never reach game
// state.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials indicates a bad email/password combination.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrEmailInUse indicates sign-up with an email that already has an account.
	ErrEmailInUse = errors.New("auth: email already in use")

	// ErrWeakPassword indicates the password failed the provider's policy.
	ErrWeakPassword = errors.New("auth: password too weak")

	// ErrUnknownEmail indicates a password reset for an email with no account.
	ErrUnknownEmail = errors.New("auth: unknown email")

	// ErrUnavailable indicates the identity backend is unreachable.
	ErrUnavailable = errors.New("auth: service unavailable")
)

// Identity is an authenticated session. Username keys the session's
// statistics counters.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
}

// Service is the identity collaborator the rest of the application consumes.
type Service interface {
	// Login authenticates an existing account.
	Login(ctx context.Context, email, password string) (*Identity, error)

	// SignUp creates an account and returns the new session.
	SignUp(ctx context.Context, username, email, password string) (*Identity, error)

	// RequestReset starts a password reset for the account's email.
	RequestReset(ctx context.Context, email string) error
}
