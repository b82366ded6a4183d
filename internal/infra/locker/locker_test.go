package locker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

type lockerUnderTest interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, "lock:", 5*time.Second, 5*time.Millisecond, nopLogger{}), mr
}

func assertMutualExclusion(t *testing.T, l lockerUnderTest) {
	t.Helper()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "voucher:SPRING")
			if !assert.NoError(t, err) {
				return
			}

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	assertMutualExclusion(t, NewLocalLocker())
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	l, _ := newRedisLocker(t)
	assertMutualExclusion(t, l)
}

func TestLocalLocker_TimesOut(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	// другой ключ не блокируется
	other, err := l.Lock(context.Background(), "other")
	require.NoError(t, err)
	other()
}

func TestRedisLocker_UnlockKeepsForeignLock(t *testing.T) {
	l, mr := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	// блокировка истекла и её забрал другой владелец
	mr.FastForward(10 * time.Second)
	require.NoError(t, mr.Set("lock:k", "someone-else"))

	unlock()
	value, err := mr.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestRedisLocker_TimesOut(t *testing.T) {
	l, _ := newRedisLocker(t)
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}
