package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// UserStore is the key-value storage collaborator holding user records.
// Implementations must be safe for concurrent use.
type UserStore interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (*entity.User, error)
	// Put creates the record if its key is free. It returns ErrAlreadyExists
	// when another record holds the key; existing records are never overwritten.
	Put(ctx context.Context, u *entity.User) (*entity.User, error)
	// Fetch returns every record, ordered by key.
	Fetch(ctx context.Context) ([]entity.User, error)
}
