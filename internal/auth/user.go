// Package auth is the identity collaborator in front of the session core:
// signup/signin endpoints, bcrypt password hashing, JWT issuance, and the
// user stores (in-memory and Postgres) that seed the social graph at
// startup.
package auth

import (
	"errors"
	"strings"
	"unicode"
)

// User is a stored credential record. Password holds the bcrypt hash.
type User struct {
	ID       string `json:"userId"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// UserStore abstracts credential persistence. Implementations must be safe
// for concurrent use.
type UserStore interface {
	ByUsername(username string) (*User, error)
	Insert(user *User) error
	All() ([]*User, error)
}

var (
	// ErrUserNotFound is returned when no user matches the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned on signup with an existing username.
	ErrUsernameTaken = errors.New("the username is already taken")

	// ErrUsernameTooShort rejects usernames under 3 characters.
	ErrUsernameTooShort = errors.New("the username cannot be less than 3 characters")

	// ErrUsernameTooLong rejects usernames over 12 characters.
	ErrUsernameTooLong = errors.New("the username cannot be more than 12 characters")

	// ErrWeakPassword rejects passwords failing the strength policy.
	ErrWeakPassword = errors.New("the password is not strong enough")
)

// NormalizeUsername lowercases a username; usernames are case-insensitive
// identifiers throughout.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername enforces the 3..12 character policy on a normalized
// username.
func ValidateUsername(username string) error {
	switch {
	case len(username) < 3:
		return ErrUsernameTooShort
	case len(username) > 12:
		return ErrUsernameTooLong
	default:
		return nil
	}
}

// ValidatePassword enforces the strength policy: at least 8 characters with
// an upper-case letter, a lower-case letter, a digit, and a special
// character.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}
