package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
)

// UserStore keeps records in process memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]entity.User
	now   func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]entity.User), now: time.Now}
}

func (s *UserStore) Get(_ context.Context, key string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Put(_ context.Context, u *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Key]; ok {
		return nil, repository.ErrAlreadyExists
	}
	rec := *u
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	s.users[rec.Key] = rec
	return &rec, nil
}

func (s *UserStore) Fetch(_ context.Context) ([]entity.User, error) {
	s.mu.RLock()
	out := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var _ repository.UserStore = (*UserStore)(nil)
