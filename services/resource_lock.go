// services/resource_lock.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResourceKey identifies one resource on one day.
type ResourceKey struct {
	ProviderID   uint
	ResourceType string
	ResourceName string
	Date         string
}

func (k ResourceKey) String() string {
	return fmt.Sprintf("resource-lock:%d:%s:%s:%s", k.ProviderID, k.ResourceType, k.ResourceName, k.Date)
}

// ResourceLocker serialises create and confirm for the same resource-day so
// the overlap check and the write that depends on it cannot interleave.
type ResourceLocker interface {
	Acquire(ctx context.Context, keys []ResourceKey) (release func(), err error)
}

// sortedKeys dedupes and orders keys so concurrent callers lock in the same order.
func sortedKeys(keys []ResourceKey) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		s := k.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// LocalResourceLocker locks within one process.
type LocalResourceLocker struct {
	Wait time.Duration

	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalResourceLocker(wait time.Duration) *LocalResourceLocker {
	return &LocalResourceLocker{Wait: wait, slots: map[string]chan struct{}{}}
}

func (l *LocalResourceLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *LocalResourceLocker) Acquire(ctx context.Context, keys []ResourceKey) (func(), error) {
	var held []chan struct{}
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	timer := time.NewTimer(l.Wait)
	defer timer.Stop()

	for _, key := range sortedKeys(keys) {
		ch := l.slot(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
			continue
		default:
		}
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-timer.C:
			release()
			return nil, fmt.Errorf("%w: %s", ErrResourceBusy, key)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

// releaseScript deletes the key only if this holder still owns it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisResourceLocker locks across instances with SET NX PX. Keys expire after
// TTL so a crashed holder cannot wedge a resource.
type RedisResourceLocker struct {
	Client *redis.Client
	Log    *zap.Logger
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration

	// NewToken generates the per-acquisition ownership value.
	NewToken func() string
}

func NewRedisResourceLocker(client *redis.Client, log *zap.Logger, ttl, wait time.Duration) *RedisResourceLocker {
	return &RedisResourceLocker{
		Client:   client,
		Log:      log,
		TTL:      ttl,
		Wait:     wait,
		Retry:    50 * time.Millisecond,
		NewToken: uuid.NewString,
	}
}

func (l *RedisResourceLocker) Acquire(ctx context.Context, keys []ResourceKey) (func(), error) {
	token := l.NewToken()
	var held []string
	release := func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, key := range held {
			if err := l.Client.Eval(rctx, releaseScript, []string{key}, token).Err(); err != nil {
				l.Log.Warn("failed to release resource lock", zap.String("key", key), zap.Error(err))
			}
		}
	}

	deadline := time.Now().Add(l.Wait)
	for _, key := range sortedKeys(keys) {
		for {
			ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
			if err != nil {
				release()
				return nil, fmt.Errorf("acquire %s: %w", key, err)
			}
			if ok {
				held = append(held, key)
				break
			}
			if !time.Now().Before(deadline) {
				release()
				return nil, fmt.Errorf("%w: %s", ErrResourceBusy, key)
			}
			select {
			case <-time.After(l.Retry):
			case <-ctx.Done():
				release()
				return nil, ctx.Err()
			}
		}
	}
	return release, nil
}
