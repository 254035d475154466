package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
	"github.com/oksasatya/go-user-registry/internal/infrastructure/memory"
)

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	t.Run("PutAndGet", func(t *testing.T) {
		created, err := store.Put(ctx, entity.NewUser("alice", "$2a$secret"))
		require.NoError(t, err)
		assert.Equal(t, "alice", created.Key)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "$2a$secret", got.Secret)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("PutExistingKeyIsRejected", func(t *testing.T) {
		_, err := store.Put(ctx, entity.NewUser("alice", "other"))
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "$2a$secret", got.Secret)
	})

	t.Run("FetchIsOrdered", func(t *testing.T) {
		_, err := store.Put(ctx, entity.NewUser("bob", "s"))
		require.NoError(t, err)
		_, err = store.Put(ctx, entity.NewUser("aaron", "s"))
		require.NoError(t, err)

		all, err := store.Fetch(ctx)
		require.NoError(t, err)
		keys := make([]string, 0, len(all))
		for _, u := range all {
			keys = append(keys, u.Key)
		}
		assert.Equal(t, []string{"aaron", "alice", "bob"}, keys)
	})
}

func TestMemoryUserStore_ConcurrentPutSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Put(ctx, entity.NewUser("carol", fmt.Sprintf("secret-%d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	}
	assert.Equal(t, 1, wins)
}
