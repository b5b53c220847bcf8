package account

import "errors"

var (
	// ErrDuplicateEmail is returned when a registration collides with an
	// existing account, whether caught by the pre-check or by the unique
	// constraint at commit time.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, deliberately indistinguishable to prevent enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidToken is the normalized result of any token validation
	// failure in the lifecycle flows; which check failed is not exposed.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrUserNotFound = errors.New("user not found")

	ErrPasswordMismatch = errors.New("passwords do not match")
)
