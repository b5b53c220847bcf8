package account

import "context"

// Repository persists users. Implementations return ErrUserNotFound for
// missing rows and ErrDuplicateEmail for unique-constraint collisions so the
// service never inspects storage-specific errors.
type Repository interface {
	// Create inserts the user and returns it with the assigned id.
	Create(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	// FindAdmin returns any user with the admin flag set.
	FindAdmin(ctx context.Context) (User, error)
	// MarkVerified flips is_verified to true and advances updated_at.
	// Verifying an already-verified user succeeds.
	MarkVerified(ctx context.Context, id int64) error
	// UpdatePasswordHash overwrites the stored hash and advances updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
