package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pollInterval = 100 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a lease lock shared by every API replica. The holder extends the
// lease every TTL/3, so it expires after TTL only if the holder dies.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
	Log    *zap.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	return &Redis{Client: client, TTL: ttl, Prefix: "lock:import:", Log: log}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.Client.SetNX(ctx, k, token, r.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			stop := make(chan struct{})
			done := make(chan struct{})
			go r.keepAlive(k, token, stop, done)

			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					<-done
					r.release(k, token)
				})
			}, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		}
	}
}

func (r *Redis) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if r.TTL <= 0 {
		<-stop
		return
	}
	ticker := time.NewTicker(r.TTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.TTL/3)
		n, err := renewScript.Run(ctx, r.Client, []string{key}, token, r.TTL.Milliseconds()).Int()
		cancel()
		if err != nil {
			if r.Log != nil {
				r.Log.Warn("lock_renew_error", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		if n == 0 {
			if r.Log != nil {
				r.Log.Warn("lock_lost", zap.String("key", key))
			}
			return
		}
	}
}

func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, r.Client, []string{key}, token).Err(); err != nil && r.Log != nil {
		r.Log.Warn("lock_release_error", zap.String("key", key), zap.Error(err))
	}
}
