// Package password provides one-way credential hashing for stored passwords.
package password

import "golang.org/x/crypto/bcrypt"

// Hash produces a salted bcrypt hash of the plaintext. The output differs
// between calls with the same input; only Verify can relate them.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash. A malformed
// hash compares as a mismatch rather than an error, so callers can treat any
// false result as bad credentials.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
