package application

import (
	"errors"
)

var (
	ErrDuplicateUser   = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")
	ErrPersistence     = errors.New("user could not be stored")
	ErrUserNotFound    = errors.New("user not found")
)

// Kind tags the failure reported by the registry.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDuplicateUser
	KindInvalidPassword
	KindPersistence
	KindUserNotFound
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateUser:
		return "duplicate_user"
	case KindInvalidPassword:
		return "invalid_password"
	case KindPersistence:
		return "persistence"
	case KindUserNotFound:
		return "user_not_found"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindDuplicateUser:
		return ErrDuplicateUser
	case KindInvalidPassword:
		return ErrInvalidPassword
	case KindPersistence:
		return ErrPersistence
	case KindUserNotFound:
		return ErrUserNotFound
	default:
		return nil
	}
}

// Error is the single error type returned by Service operations.
// Rule is set only for KindInvalidPassword; Err carries the underlying cause.
type Error struct {
	Kind     Kind
	Username string
	Rule     Rule
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidPassword:
		return ErrInvalidPassword.Error() + ": " + string(e.Rule)
	case KindPersistence:
		if e.Err != nil {
			return ErrPersistence.Error() + ": " + e.Err.Error()
		}
		return ErrPersistence.Error()
	}
	if s := e.Kind.sentinel(); s != nil {
		return s.Error()
	}
	return "registry error"
}

// Is matches the sentinel of the error's kind, so callers can use errors.Is(err, ErrUserNotFound).
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (e *Error) Unwrap() error { return e.Err }

func DuplicateUser(username string) error {
	return &Error{Kind: KindDuplicateUser, Username: username}
}

func InvalidPassword(username string, v *ValidationError) error {
	return &Error{Kind: KindInvalidPassword, Username: username, Rule: v.Rule, Err: v}
}

func Persistence(username string, err error) error {
	return &Error{Kind: KindPersistence, Username: username, Err: err}
}

func UserNotFound(username string) error {
	return &Error{Kind: KindUserNotFound, Username: username}
}

// KindOf reports the kind of a registry error, or KindUnknown for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
