// Package addresspool выдаёт платёжные адреса по ключу (актив, сеть).
//
// Пулы адресов — статическая конфигурация, загружаемая при старте; адреса
// для пула непрозрачные строки, их формат не проверяется. Выдача идёт по
// кругу без повторов (round-robin) с арендой адреса на время платёжного
// окна, чтобы два одновременных покупателя не получили один адрес.
// Аренда снимается при отмене или истечении окна.
package addresspool

import (
	"context"
	"errors"
)

// ErrPoolExhausted возвращается, когда для ключа нет свободных адресов
// либо ключ не сконфигурирован вовсе.
var ErrPoolExhausted = errors.New("addresspool: no address available")

// Provider выдаёт и освобождает платёжные адреса.
type Provider interface {
	// Acquire возвращает адрес для пары (актив, сеть).
	Acquire(ctx context.Context, asset, network string) (string, error)
	// Release снимает аренду с ранее выданного адреса.
	Release(ctx context.Context, asset, network, address string) error
}

// Leaser отслеживает занятость адресов. Реализация может быть локальной
// или распределённой (Redis), чтобы аренды были видны всем репликам.
type Leaser interface {
	// TryLease пытается арендовать адрес на ttl. false — адрес уже занят.
	TryLease(ctx context.Context, key, address string) (bool, error)
	// Unlease снимает аренду.
	Unlease(ctx context.Context, key, address string) error
}

// PoolKey собирает ключ пула из актива и необязательной сети.
func PoolKey(asset, network string) string {
	if network == "" {
		return asset
	}
	return asset + "-" + network
}
