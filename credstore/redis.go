package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis client. Intended for kiosk fleets and
// BFF processes that share the persisted session across restarts of the
// host process. Keys are namespaced by prefix so several dashboard
// deployments can share one backend.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client. prefix defaults to "cp". ttl bounds
// how long a persisted record outlives its last write; zero means no
// expiry (the session window is enforced by the Manager, not the store).
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, errors.New("credstore: nil redis client")
	}
	if prefix == "" {
		prefix = "cp"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *Redis) key(name string) string {
	return r.prefix + ":" + name
}

func (r *Redis) Load(ctx context.Context) (*Record, error) {
	raw, err := r.client.Get(ctx, r.key(KeyUser)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil || !rec.valid() {
		_ = r.Clear(ctx)
		return nil, ErrCorruptRecord
	}
	return &rec, nil
}

func (r *Redis) Save(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(KeyUser), raw, r.ttl)
	pipe.Set(ctx, r.key(KeyAuthToken), rec.Token, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(KeyUser), r.key(KeyAuthToken)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Redis) Token(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key(KeyAuthToken)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, nil
}

func (r *Redis) RememberMe(ctx context.Context) (bool, string, error) {
	flag, err := r.client.Get(ctx, r.key(KeyRememberMe)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	email, err := r.client.Get(ctx, r.key(KeyRememberedEmail)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return flag == "true", email, nil
}

func (r *Redis) SetRememberMe(ctx context.Context, email string) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(KeyRememberMe), "true", 0)
	pipe.Set(ctx, r.key(KeyRememberedEmail), email, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Redis) ClearRememberMe(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(KeyRememberMe), r.key(KeyRememberedEmail)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
