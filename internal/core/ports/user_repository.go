package ports

import (
	"context"

	"github.com/taskboard/taskboard-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Email lookups are
// case-insensitive: implementations receive the address already lowercased.
type UserRepository interface {
	// Create inserts the user and returns it with the store-assigned ID.
	// A uniqueness conflict on email yields domain.ErrEmailTaken, even when
	// it surfaces from the store's own constraint after a passed pre-check.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
