package addresspool

import (
	"context"
	"sync"
	"time"
)

// MemoryLeaser — локальный учёт аренды адресов для одиночного процесса
// и тестов. Аренда истекает по TTL сама, без фонового уборщика: просроченные
// записи вытесняются при следующей попытке аренды.
type MemoryLeaser struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	leases map[string]time.Time
}

// NewMemoryLeaser создаёт локальный учёт аренды с заданным TTL.
func NewMemoryLeaser(ttl time.Duration) *MemoryLeaser {
	return &MemoryLeaser{
		ttl:    ttl,
		now:    time.Now,
		leases: make(map[string]time.Time),
	}
}

func leaseKey(key, address string) string {
	return key + ":" + address
}

// TryLease арендует адрес, если он свободен или прежняя аренда истекла.
func (l *MemoryLeaser) TryLease(_ context.Context, key, address string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := leaseKey(key, address)
	if until, ok := l.leases[k]; ok && until.After(l.now()) {
		return false, nil
	}
	l.leases[k] = l.now().Add(l.ttl)
	return true, nil
}

// Unlease снимает аренду с адреса.
func (l *MemoryLeaser) Unlease(_ context.Context, key, address string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, leaseKey(key, address))
	return nil
}
