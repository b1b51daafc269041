// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/chungyifen/tax-refund/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to system accounts and their authorities.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// AssignRole links a user to a role by role name.
	AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error
	// GetByUsername loads a user by unique username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Authorities returns the union of role names and function codes
	// granted to the user. Order is stable (sorted by the database).
	Authorities(ctx context.Context, id uuid.UUID) ([]string, error)
	// List returns all accounts with their role names.
	List(ctx context.Context) ([]model.UserSummary, error)
}
