package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
)

type fakeIndexer struct {
	got []entity.PublicUser
	err error
}

func (f *fakeIndexer) Index(_ context.Context, u entity.PublicUser) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, u)
	return nil
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Indexed", func(t *testing.T) {
		f := &fakeIndexer{}
		out, err := handleEvent(ctx, f, []byte(`{"type":"user.registered","username":"alice","registered_at":"2024-01-01T00:00:00Z"}`))
		require.NoError(t, err)
		assert.Equal(t, outcomeIndexed, out)
		assert.Equal(t, []entity.PublicUser{{Username: "alice"}}, f.got)
	})

	t.Run("OtherType", func(t *testing.T) {
		f := &fakeIndexer{}
		out, err := handleEvent(ctx, f, []byte(`{"type":"user.deleted","username":"alice"}`))
		require.NoError(t, err)
		assert.Equal(t, outcomeSkipped, out)
		assert.Empty(t, f.got)
	})

	t.Run("Malformed", func(t *testing.T) {
		out, err := handleEvent(ctx, &fakeIndexer{}, []byte(`{`))
		assert.Error(t, err)
		assert.Equal(t, outcomeRejected, out)

		out, err = handleEvent(ctx, &fakeIndexer{}, []byte(`{"type":"user.registered"}`))
		assert.Error(t, err)
		assert.Equal(t, outcomeRejected, out)
	})

	t.Run("IndexFailureRetries", func(t *testing.T) {
		out, err := handleEvent(ctx, &fakeIndexer{err: errors.New("es down")}, []byte(`{"type":"user.registered","username":"alice"}`))
		assert.Error(t, err)
		assert.Equal(t, outcomeRetry, out)
	})
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryDelay(0))
	assert.Equal(t, 500*time.Millisecond, retryDelay(1))
	assert.Equal(t, time.Second, retryDelay(2))
	assert.Equal(t, 4*time.Second, retryDelay(4))
	assert.Equal(t, 30*time.Second, retryDelay(7))
	assert.Equal(t, 30*time.Second, retryDelay(100))
}
