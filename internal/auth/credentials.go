package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid username or password")

// HashPassword returns the bcrypt hash used for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckCredentials verifies the admin login against the configured
// username and bcrypt password hash. Login is disabled entirely when no
// hash is configured.
func CheckCredentials(username, password, wantUsername, wantHash string) error {
	if wantHash == "" {
		return ErrBadCredentials
	}
	if username != wantUsername {
		return ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(wantHash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
