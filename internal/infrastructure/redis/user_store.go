package redis

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
	"github.com/oksasatya/go-user-registry/pkg/helpers"
)

// Atomic create-if-absent: SETNX the record and add its key to the index.
var createScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("SADD", KEYS[2], ARGV[2])
return 1
`)

// UserStore keeps each record as a JSON string under <prefix>:user:<key>
// and tracks keys in the set <prefix>:users.
type UserStore struct {
	client *redis.Client
	prefix string
}

func NewUserStore(client *redis.Client, prefix string) *UserStore {
	if prefix == "" {
		prefix = "registry"
	}
	return &UserStore{client: client, prefix: prefix}
}

func (s *UserStore) recordKey(key string) string { return s.prefix + ":user:" + key }
func (s *UserStore) indexKey() string           { return s.prefix + ":users" }

func (s *UserStore) Get(ctx context.Context, key string) (*entity.User, error) {
	var u entity.User
	ok, err := helpers.RedisGetJSON(ctx, s.client, s.recordKey(key), &u)
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %q", key)
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Put(ctx context.Context, u *entity.User) (*entity.User, error) {
	rec := *u
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encode user")
	}
	res, err := createScript.Run(ctx, s.client, []string{s.recordKey(rec.Key), s.indexKey()}, b, rec.Key).Int64()
	if err != nil {
		return nil, errors.Wrapf(err, "redis put %q", rec.Key)
	}
	if res == 0 {
		return nil, repository.ErrAlreadyExists
	}
	return &rec, nil
}

func (s *UserStore) Fetch(ctx context.Context) ([]entity.User, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis list user keys")
	}
	if len(keys) == 0 {
		return []entity.User{}, nil
	}
	sort.Strings(keys)

	recordKeys := make([]string, len(keys))
	for i, k := range keys {
		recordKeys[i] = s.recordKey(k)
	}
	vals, err := s.client.MGet(ctx, recordKeys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis fetch users")
	}

	out := make([]entity.User, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// index entry without a record
			continue
		}
		var u entity.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, errors.Wrapf(err, "decode user %q", keys[i])
		}
		out = append(out, u)
	}
	return out, nil
}

var _ repository.UserStore = (*UserStore)(nil)
