package ports

import (
	"context"

	"github.com/taskboard/taskboard-api/internal/core/domain"
)

// RegisterInput carries the credential fields for a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService implements the anonymous → registered flow and session issuance.
type AuthService interface {
	// Register validates input, enforces email uniqueness, persists the user
	// and returns it with a fresh session token.
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	// Login verifies credentials and returns the user with a session token.
	// Unknown email and wrong password produce the same error.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Profile resolves the authenticated user's public record. A token whose
	// subject no longer exists resolves to domain.ErrUnauthorized.
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
