package account

import "time"

// User represents a registered account. The plaintext password never appears
// here; only the bcrypt hash is stored.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsVerified   bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials carries an email/password pair through registration and login.
type Credentials struct {
	Email    string
	Password string
}
