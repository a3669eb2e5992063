// Package password wraps bcrypt for credential storage. The produced hash is
// self-describing (algorithm, cost, and salt are embedded), so verification
// needs no parameters beyond the hash itself.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// Hash derives a salted bcrypt hash from a plaintext password.
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password matches hash. It returns false, never an
// error, for empty inputs or malformed hashes.
func Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
