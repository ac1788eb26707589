package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "Связной")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, l.keys, "released keys are forgotten")
}

func TestLocal_DifferentKeysIndependent(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocal_ContextDeadline(t *testing.T) {
	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "shop")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "shop")
	require.ErrorIs(t, err, ErrNotAcquired)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	again, err := l.Lock(context.Background(), "shop")
	require.NoError(t, err)
	again()
}

func TestRedis_LockRelease(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	l := NewRedis(client, time.Second, zap.NewNop())
	l.Prefix = "test:lock:" + t.Name() + ":"
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "shop")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "shop")
	require.ErrorIs(t, err, ErrNotAcquired)

	unlock()
	unlock2, err := l.Lock(ctx, "shop")
	require.NoError(t, err)
	unlock2()
}

func TestRedis_LeaseOutlivesTTLWhileHeld(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	l := NewRedis(client, 300*time.Millisecond, zap.NewNop())
	l.Prefix = "test:lock:" + t.Name() + ":"
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "shop")
	require.NoError(t, err)

	time.Sleep(time.Second)

	short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "shop")
	require.ErrorIs(t, err, ErrNotAcquired, "held lease was extended past its TTL")

	unlock()
	unlock()

	n, err := client.Exists(ctx, l.Prefix+"shop").Result()
	require.NoError(t, err)
	assert.Zero(t, n, "key is gone after unlock")
}
