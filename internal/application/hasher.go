package application

import (
	"unicode/utf8"

	"github.com/oksasatya/go-user-registry/pkg/helpers"
)

const (
	// MinPasswordLength is exclusive: a password must be longer than this.
	MinPasswordLength = 7
	// bcrypt rejects inputs past 72 bytes.
	maxPasswordBytes = 72
)

// Rule names the password rule a candidate violated.
type Rule string

const (
	RuleMismatch Rule = "password confirmation mismatch"
	RuleTooShort Rule = "password too short"
	RuleTooLong  Rule = "password too long"
)

// ValidationError is returned by PasswordHasher.Hash when a rule is violated.
type ValidationError struct {
	Rule Rule
}

func (e *ValidationError) Error() string { return string(e.Rule) }

// PasswordHasher turns a confirmed password into a durable secret and checks
// candidates against it.
type PasswordHasher interface {
	Hash(password1, password2 string) (string, error)
	Verify(password, secret string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. The salt is generated per call.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password1, password2 string) (string, error) {
	if password1 != password2 {
		return "", &ValidationError{Rule: RuleMismatch}
	}
	if utf8.RuneCountInString(password1) <= MinPasswordLength {
		return "", &ValidationError{Rule: RuleTooShort}
	}
	if len(password1) > maxPasswordBytes {
		return "", &ValidationError{Rule: RuleTooLong}
	}
	return helpers.HashPassword(password1, h.Cost)
}

// Verify never errors: a malformed secret is simply a non-match.
// bcrypt ignores input past 72 bytes, so longer candidates never match.
func (h *BcryptHasher) Verify(password, secret string) bool {
	if len(password) > maxPasswordBytes {
		return false
	}
	return helpers.CompareHashAndPassword(secret, password)
}

var _ PasswordHasher = (*BcryptHasher)(nil)
