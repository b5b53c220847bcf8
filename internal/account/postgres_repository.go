package account

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, password_hash, is_verified, is_admin, created_at, updated_at`

// Create inserts a new user. A concurrent insert of the same email loses the
// race at the unique index and surfaces here as ErrDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO users (email, password_hash, is_verified, is_admin, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		user.Email, user.PasswordHash, user.IsVerified, user.IsAdmin, user.CreatedAt.UTC(), user.UpdatedAt.UTC())

	if err := row.Scan(&user.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return user, nil
}

// FindByEmail fetches a user by email. The match is case-sensitive.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindAdmin fetches the provisioned admin account, if any.
func (r *PostgresRepository) FindAdmin(ctx context.Context) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin LIMIT 1`)
	return scanUser(row)
}

// MarkVerified flips the verification flag. Re-verifying is a no-op update,
// not an error.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash overwrites the stored credential hash.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsVerified, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}
