package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context, role string, page, limit int) ([]*User, int64, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
