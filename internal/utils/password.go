package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// AdminHash picks the configured admin hash, or hashes the plain password
// when only that was given.  The hash wins when both are set.
func AdminHash(hash, plain string, cost int) (string, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return "", err
		}
		return hash, nil
	}
	if plain == "" {
		return "", errors.New("no admin password configured")
	}
	return HashPassword(plain, cost)
}
