package addresspool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPools() []PoolConfig {
	return []PoolConfig{
		{Asset: "btc", Addresses: []string{"bc1-first", "bc1-second", "bc1-third"}},
		{Asset: "usdt", Network: "trc20", Addresses: []string{"T-one"}},
		{Asset: "ltc", Addresses: nil},
	}
}

func TestAcquire_RoundRobin(t *testing.T) {
	provider := NewStatic(testPools(), nil)
	ctx := context.Background()

	// без аренды курсор просто идёт по кругу
	for _, want := range []string{"bc1-first", "bc1-second", "bc1-third", "bc1-first"} {
		got, err := provider.Acquire(ctx, "btc", "")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAcquire_UnknownKey(t *testing.T) {
	provider := NewStatic(testPools(), nil)

	_, err := provider.Acquire(context.Background(), "doge", "")
	assert.ErrorIs(t, err, ErrPoolExhausted)

	// пустой пул отбрасывается при загрузке и выглядит как несконфигурированный
	_, err = provider.Acquire(context.Background(), "ltc", "")
	assert.ErrorIs(t, err, ErrPoolExhausted)

	// сеть — часть ключа
	_, err = provider.Acquire(context.Background(), "usdt", "erc20")
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestAcquire_LeaseBlocksReuse(t *testing.T) {
	leaser := NewMemoryLeaser(time.Hour)
	provider := NewStatic(testPools(), leaser)
	ctx := context.Background()

	addr, err := provider.Acquire(ctx, "usdt", "trc20")
	require.NoError(t, err)
	assert.Equal(t, "T-one", addr)

	// единственный адрес занят — второй покупатель получает отказ
	_, err = provider.Acquire(ctx, "usdt", "trc20")
	assert.ErrorIs(t, err, ErrPoolExhausted)

	require.NoError(t, provider.Release(ctx, "usdt", "trc20", addr))

	addr, err = provider.Acquire(ctx, "usdt", "trc20")
	require.NoError(t, err)
	assert.Equal(t, "T-one", addr)
}

func TestAcquire_LeaseSkipsBusyAddresses(t *testing.T) {
	leaser := NewMemoryLeaser(time.Hour)
	provider := NewStatic(testPools(), leaser)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 3 {
		addr, err := provider.Acquire(ctx, "btc", "")
		require.NoError(t, err)
		assert.False(t, seen[addr], "address %s handed out twice", addr)
		seen[addr] = true
	}

	_, err := provider.Acquire(ctx, "btc", "")
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestMemoryLeaser_TTLExpiry(t *testing.T) {
	leaser := NewMemoryLeaser(time.Minute)
	now := time.Now()
	leaser.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := leaser.TryLease(ctx, "btc", "bc1-first")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = leaser.TryLease(ctx, "btc", "bc1-first")
	require.NoError(t, err)
	assert.False(t, ok)

	// после истечения TTL адрес можно арендовать снова
	now = now.Add(2 * time.Minute)
	ok, err = leaser.TryLease(ctx, "btc", "bc1-first")
	require.NoError(t, err)
	assert.True(t, ok)
}
