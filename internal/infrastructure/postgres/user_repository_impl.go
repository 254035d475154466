package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
)

// UserStore persists records in the users table, keyed by the username.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (r *UserStore) Get(ctx context.Context, key string) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `
		SELECT key, username, secret, created_at
		FROM users
		WHERE key = $1
	`, key)

	if err := row.Scan(&u.Key, &u.Username, &u.Secret, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, pkgerrors.Wrapf(err, "select user %q", key)
	}

	return u, nil
}

// Put relies on the primary key: a conflicting insert returns no row.
func (r *UserStore) Put(ctx context.Context, u *entity.User) (*entity.User, error) {
	rec := *u

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (key, username, secret)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
		RETURNING created_at
	`, rec.Key, rec.Username, rec.Secret)

	if err := row.Scan(&rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrAlreadyExists
		}
		return nil, pkgerrors.Wrapf(err, "insert user %q", rec.Key)
	}

	return &rec, nil
}

func (r *UserStore) Fetch(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT key, username, secret, created_at
		FROM users
		ORDER BY key
	`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "select users")
	}
	defer rows.Close()

	out := make([]entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.Key, &u.Username, &u.Secret, &u.CreatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "iterate users")
	}
	return out, nil
}

var _ repository.UserStore = (*UserStore)(nil)
