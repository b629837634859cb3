package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("platform/cache: miss")

// New creates a Redis client and verifies the connection.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", addr, err)
	}

	return client, nil
}

// GetJSON loads key into a value of type T. A missing key yields ErrMiss.
func GetJSON[T any](ctx context.Context, client redis.Cmdable, key string) (T, error) {
	var out T
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, ErrMiss
	}
	if err != nil {
		return out, fmt.Errorf("platform/cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("platform/cache: decode %s: %w", key, err)
	}
	return out, nil
}

// SetJSON stores v under key for ttl.
func SetJSON(ctx context.Context, client redis.Cmdable, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("platform/cache: encode %s: %w", key, err)
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("platform/cache: set %s: %w", key, err)
	}
	return nil
}

// versionedSet writes KEYS[1] only while KEYS[2] still holds ARGV[1]. A missing
// version key counts as 0.
var versionedSet = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Version reads the counter stored at versionKey, 0 when absent.
func Version(ctx context.Context, client redis.Cmdable, versionKey string) (int64, error) {
	v, err := client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("platform/cache: version %s: %w", versionKey, err)
	}
	return v, nil
}

// SetJSONAtVersion stores v under key for ttl unless versionKey has moved past
// version since the caller read it. It reports whether the value was written.
func SetJSONAtVersion(ctx context.Context, client redis.Cmdable, key, versionKey string, version int64, v any, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("platform/cache: encode %s: %w", key, err)
	}
	written, err := versionedSet.Run(ctx, client, []string{key, versionKey}, version, raw, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("platform/cache: set %s: %w", key, err)
	}
	return written == 1, nil
}

// Invalidate deletes key and bumps versionKey so writers holding an older
// version skip their write. versionTTL bounds how long the counter is kept.
func Invalidate(ctx context.Context, client redis.Cmdable, key, versionKey string, versionTTL time.Duration) error {
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("platform/cache: invalidate %s: %w", key, err)
	}
	return nil
}
