package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
	"github.com/oksasatya/go-user-registry/internal/infrastructure/memory"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubStore struct {
	repository.UserStore
	getErr   error
	putErr   error
	fetchErr error
}

func (s *stubStore) Get(ctx context.Context, key string) (*entity.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.UserStore.Get(ctx, key)
}

func (s *stubStore) Put(ctx context.Context, u *entity.User) (*entity.User, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	return s.UserStore.Put(ctx, u)
}

func (s *stubStore) Fetch(ctx context.Context) ([]entity.User, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.UserStore.Fetch(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, body)
	return p.err
}

type stubDirectory struct {
	mu      sync.Mutex
	indexed []entity.PublicUser
	res     []entity.PublicUser
	err     error
}

func (d *stubDirectory) Index(_ context.Context, u entity.PublicUser) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.indexed = append(d.indexed, u)
	return nil
}

func (d *stubDirectory) Search(context.Context, string, int) ([]entity.PublicUser, error) {
	return d.res, d.err
}

func newTestService(store repository.UserStore) *Service {
	if store == nil {
		store = memory.NewUserStore()
	}
	return NewService(store, newTestHasher(), nil, nil, quietLogger())
}

func TestService_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := newTestService(store)

	u, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
	require.NoError(t, err)
	assert.Equal(t, &entity.PublicUser{Username: "alice"}, u)

	rec, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "longpass1", rec.Secret)
	assert.NotContains(t, rec.Secret, "longpass1")

	ok, err := svc.Authenticate(ctx, "alice", "longpass1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Authenticate(ctx, "ghost", "x")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindUserNotFound, KindOf(err))
}

func TestService_AuthenticateAtPasswordLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	p := strings.Repeat("a", maxPasswordBytes)
	_, err := svc.Register(ctx, "alice", p, p)
	require.NoError(t, err)

	ok, err := svc.Authenticate(ctx, "alice", p)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authenticate(ctx, "alice", p+"x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
	require.NoError(t, err)

	for _, pw := range [][2]string{{"longpass1", "longpass1"}, {"x", "y"}, {"", ""}} {
		_, err = svc.Register(ctx, "alice", pw[0], pw[1])
		assert.ErrorIs(t, err, ErrDuplicateUser)
		assert.Equal(t, KindDuplicateUser, KindOf(err))
	}
}

func TestService_RegisterInvalidPassword(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := newTestService(store)

	t.Run("TooShort", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob", "short", "short")
		require.ErrorIs(t, err, ErrInvalidPassword)

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindInvalidPassword, e.Kind)
		assert.Equal(t, RuleTooShort, e.Rule)
		assert.Equal(t, "invalid password: password too short", err.Error())
	})

	t.Run("Mismatch", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob", "longpass1", "longpass2")
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, RuleMismatch, e.Rule)
		assert.NotContains(t, err.Error(), "longpass")
	})

	_, err := store.Get(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_RegisterPersistenceFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	t.Run("LookupFails", func(t *testing.T) {
		svc := newTestService(&stubStore{UserStore: memory.NewUserStore(), getErr: boom})
		_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
		assert.ErrorIs(t, err, ErrPersistence)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("WriteFails", func(t *testing.T) {
		svc := newTestService(&stubStore{UserStore: memory.NewUserStore(), putErr: boom})
		_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
		assert.ErrorIs(t, err, ErrPersistence)
		assert.Equal(t, KindPersistence, KindOf(err))
		assert.NotContains(t, err.Error(), "longpass1")
	})

	t.Run("ConcurrentCreateIsDuplicate", func(t *testing.T) {
		svc := newTestService(&stubStore{UserStore: memory.NewUserStore(), putErr: repository.ErrAlreadyExists})
		_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})
}

func TestService_RegisterRaceSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "carol", "longpass1", "longpass1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateUser)
	}
	assert.Equal(t, 1, wins)
}

func TestService_AuthenticateLookupFailure(t *testing.T) {
	svc := newTestService(&stubStore{UserStore: memory.NewUserStore(), getErr: errors.New("timeout")})
	ok, err := svc.Authenticate(context.Background(), "alice", "longpass1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestService_PublishesRegistrationEvent(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(memory.NewUserStore(), newTestHasher(), pub, nil, quietLogger())

	_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "short", "short")
	require.Error(t, err)

	require.Len(t, pub.events, 1)
	ev, ok := pub.events[0].(entity.UserRegistered)
	require.True(t, ok)
	assert.Equal(t, entity.EventUserRegistered, ev.Type)
	assert.Equal(t, "alice", ev.Username)
	assert.False(t, ev.RegisteredAt.IsZero())
}

func TestService_PublishFailureDoesNotFailRegistration(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	svc := NewService(memory.NewUserStore(), newTestHasher(), pub, nil, quietLogger())

	u, err := svc.Register(context.Background(), "alice", "longpass1", "longpass1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestService_RegisterIndexesWithoutEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("NoPublisher", func(t *testing.T) {
		dir := &stubDirectory{}
		svc := NewService(memory.NewUserStore(), newTestHasher(), nil, dir, quietLogger())
		_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
		require.NoError(t, err)
		assert.Equal(t, []entity.PublicUser{{Username: "alice"}}, dir.indexed)
	})

	t.Run("PublishFails", func(t *testing.T) {
		dir := &stubDirectory{}
		pub := &recordingPublisher{err: errors.New("channel closed")}
		svc := NewService(memory.NewUserStore(), newTestHasher(), pub, dir, quietLogger())
		_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
		require.NoError(t, err)
		assert.Equal(t, []entity.PublicUser{{Username: "alice"}}, dir.indexed)
	})

	t.Run("PublishedLeavesIndexToWorker", func(t *testing.T) {
		dir := &stubDirectory{}
		pub := &recordingPublisher{}
		svc := NewService(memory.NewUserStore(), newTestHasher(), pub, dir, quietLogger())
		_, err := svc.Register(ctx, "alice", "longpass1", "longpass1")
		require.NoError(t, err)
		assert.Empty(t, dir.indexed)
		assert.Len(t, pub.events, 1)
	})
}

type failingHasher struct{ PasswordHasher }

func (failingHasher) Hash(string, string) (string, error) {
	return "", errors.New("entropy source unavailable")
}

func TestService_RegisterHashFailureIsTagged(t *testing.T) {
	store := memory.NewUserStore()
	svc := NewService(store, failingHasher{}, nil, nil, quietLogger())

	_, err := svc.Register(context.Background(), "alice", "longpass1", "longpass1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, KindPersistence, KindOf(err))

	_, err = store.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_GetAndListUsers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	for _, name := range []string{"lelia", "daniel"} {
		_, err := svc.Register(ctx, name, "longpass1", "longpass1")
		require.NoError(t, err)
	}

	u, err := svc.GetUser(ctx, "daniel")
	require.NoError(t, err)
	assert.Equal(t, "daniel", u.Username)

	_, err = svc.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	all, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.PublicUser{{Username: "daniel"}, {Username: "lelia"}}, all)
}

func TestService_ListUsersFailure(t *testing.T) {
	svc := newTestService(&stubStore{UserStore: memory.NewUserStore(), fetchErr: errors.New("down")})
	_, err := svc.ListUsers(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestService_SearchUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("ScanFallback", func(t *testing.T) {
		svc := newTestService(nil)
		for _, name := range []string{"alice", "Alicia", "bob"} {
			_, err := svc.Register(ctx, name, "longpass1", "longpass1")
			require.NoError(t, err)
		}

		res, err := svc.SearchUsers(ctx, "ali", 0)
		require.NoError(t, err)
		assert.Equal(t, []entity.PublicUser{{Username: "Alicia"}, {Username: "alice"}}, res)

		res, err = svc.SearchUsers(ctx, "ali", 1)
		require.NoError(t, err)
		assert.Len(t, res, 1)
	})

	t.Run("Directory", func(t *testing.T) {
		dir := &stubDirectory{res: []entity.PublicUser{{Username: "indexed"}}}
		svc := NewService(memory.NewUserStore(), newTestHasher(), nil, dir, quietLogger())

		res, err := svc.SearchUsers(ctx, "ind", 5)
		require.NoError(t, err)
		assert.Equal(t, dir.res, res)
	})

	t.Run("EmptyDirectoryFallsBack", func(t *testing.T) {
		dir := &stubDirectory{res: []entity.PublicUser{}}
		svc := NewService(memory.NewUserStore(), newTestHasher(), nil, dir, quietLogger())
		_, err := svc.Register(ctx, "indigo", "longpass1", "longpass1")
		require.NoError(t, err)

		res, err := svc.SearchUsers(ctx, "ind", 5)
		require.NoError(t, err)
		assert.Equal(t, []entity.PublicUser{{Username: "indigo"}}, res)
	})

	t.Run("DirectoryFailureFallsBack", func(t *testing.T) {
		dir := &stubDirectory{err: errors.New("es down")}
		svc := NewService(memory.NewUserStore(), newTestHasher(), nil, dir, quietLogger())
		_, err := svc.Register(ctx, "indigo", "longpass1", "longpass1")
		require.NoError(t, err)

		res, err := svc.SearchUsers(ctx, "ind", 5)
		require.NoError(t, err)
		assert.Equal(t, []entity.PublicUser{{Username: "indigo"}}, res)
	})
}
