package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Снимаем блокировку, только если она всё ещё наша
const luaUnlock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

var unlockScript = redis.NewScript(luaUnlock)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RedisLocker распределённая блокировка по ключу на SET NX PX
// Подходит для нескольких реплик сервиса
type RedisLocker struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
	logger     Logger
}

// NewRedisLocker создает блокировщик на redis
// ttl ограничивает время жизни блокировки, если владелец упал, не сняв её
func NewRedisLocker(client redis.UniversalClient, prefix string, ttl, retryDelay time.Duration, logger Logger) *RedisLocker {
	return &RedisLocker{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Lock берёт блокировку по ключу, ожидая её освобождения до отмены ctx
// Возвращает функцию снятия блокировки
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: SETNX %s: %v", ErrLockBackend, fullKey, err)
		}
		if ok {
			return func() { l.unlock(fullKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: key=%s", ErrLockTimeout, fullKey)
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) unlock(key, token string) {
	// Снимаем блокировку даже при отменённом контексте вызова
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("RedisLocker: failed to release key=%s: %v", key, err)
	}
}
