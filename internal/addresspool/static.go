package addresspool

import (
	"context"
	"fmt"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

// PoolConfig — один пул адресов из конфигурационного файла.
type PoolConfig struct {
	Asset     string   `yaml:"asset"`
	Network   string   `yaml:"network,omitempty"`
	Addresses []string `yaml:"addresses"`
}

type poolsFile struct {
	Pools []PoolConfig `yaml:"pools"`
}

type pool struct {
	addresses []string
	cursor    int
}

// StaticProvider раздаёт адреса из статических пулов по кругу.
// Курсор двигается на каждую выдачу, занятые адреса пропускаются.
type StaticProvider struct {
	mu     sync.Mutex
	pools  map[string]*pool
	leaser Leaser
}

// NewStatic создаёт провайдер из списка пулов. Пустые пулы отбрасываются.
func NewStatic(configs []PoolConfig, leaser Leaser) *StaticProvider {
	pools := make(map[string]*pool, len(configs))
	for _, cfg := range configs {
		if len(cfg.Addresses) == 0 {
			continue
		}
		pools[PoolKey(cfg.Asset, cfg.Network)] = &pool{addresses: cfg.Addresses}
	}
	return &StaticProvider{pools: pools, leaser: leaser}
}

// LoadPools читает файл пулов (yaml) и создаёт провайдер.
func LoadPools(path string, leaser Leaser) (*StaticProvider, error) {
	const op = "addresspool.LoadPools"
	var file poolsFile
	if err := cleanenv.ReadConfig(path, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(file.Pools) == 0 {
		return nil, fmt.Errorf("%s: no pools configured", op)
	}
	return NewStatic(file.Pools, leaser), nil
}

// Acquire выдаёт следующий свободный адрес пула. Если ключ не
// сконфигурирован или все адреса заняты, возвращает ErrPoolExhausted.
func (p *StaticProvider) Acquire(ctx context.Context, asset, network string) (string, error) {
	const op = "addresspool.Acquire"
	key := PoolKey(asset, network)

	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.pools[key]
	if !ok {
		return "", fmt.Errorf("%s: %s: %w", op, key, ErrPoolExhausted)
	}

	for range pl.addresses {
		addr := pl.addresses[pl.cursor]
		pl.cursor = (pl.cursor + 1) % len(pl.addresses)

		if p.leaser == nil {
			return addr, nil
		}
		ok, err := p.leaser.TryLease(ctx, key, addr)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			return addr, nil
		}
	}
	return "", fmt.Errorf("%s: %s: %w", op, key, ErrPoolExhausted)
}

// Release снимает аренду с адреса.
func (p *StaticProvider) Release(ctx context.Context, asset, network, address string) error {
	if p.leaser == nil {
		return nil
	}
	return p.leaser.Unlease(ctx, PoolKey(asset, network), address)
}
