package addresspool

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLeaser хранит аренды адресов в Redis, чтобы реплики сервиса не
// выдали один адрес двум покупателям. Аренда — ключ с TTL платёжного окна,
// захват атомарный через SETNX.
type RedisLeaser struct {
	db  *redis.Client
	ttl time.Duration
}

// NewRedisLeaser создаёт распределённый учёт аренды поверх готового клиента.
func NewRedisLeaser(db *redis.Client, ttl time.Duration) *RedisLeaser {
	return &RedisLeaser{db: db, ttl: ttl}
}

func (l *RedisLeaser) redisKey(key, address string) string {
	return fmt.Sprintf("address-lease:%s:%s", key, address)
}

// TryLease атомарно захватывает аренду адреса.
func (l *RedisLeaser) TryLease(ctx context.Context, key, address string) (bool, error) {
	const op = "addresspool.RedisLeaser.TryLease"
	ok, err := l.db.SetNX(ctx, l.redisKey(key, address), 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// Unlease снимает аренду адреса.
func (l *RedisLeaser) Unlease(ctx context.Context, key, address string) error {
	const op = "addresspool.RedisLeaser.Unlease"
	if err := l.db.Del(ctx, l.redisKey(key, address)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
