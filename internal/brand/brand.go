// Package brand описывает витрины-реселлеры как данные, а не как код.
// Каждый бренд — запись в каталоге: тарифные планы, принимаемые активы и
// токены оформления. Один параметризованный движок сессии обслуживает все
// бренды; раньше то же самое делали полтора десятка скопированных страниц.
package brand

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kseleznyov/crypto-checkout/internal/models"
)

// Brand — конфигурация одной витрины.
type Brand struct {
	Key     string            `yaml:"key" json:"key"`
	Name    string            `yaml:"name" json:"name"`
	Styling map[string]string `yaml:"styling,omitempty" json:"styling,omitempty"`
	Plans   []models.Plan     `yaml:"plans" json:"plans"`
	Assets  []models.Asset    `yaml:"assets" json:"assets"`
}

// PlanByID ищет план в каталоге бренда.
func (b Brand) PlanByID(id string) (models.Plan, bool) {
	for _, p := range b.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// AssetByID ищет актив в списке принимаемых брендом.
func (b Brand) AssetByID(id string) (models.Asset, bool) {
	for _, a := range b.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return models.Asset{}, false
}

type catalogFile struct {
	Brands []Brand `yaml:"brands"`
}

// Registry — загруженный при старте каталог брендов, read-only.
type Registry struct {
	brands map[string]Brand
	order  []string
}

// NewRegistry собирает реестр из списка брендов.
func NewRegistry(brands []Brand) (*Registry, error) {
	const op = "brand.NewRegistry"
	r := &Registry{brands: make(map[string]Brand, len(brands))}
	for _, b := range brands {
		if b.Key == "" {
			return nil, fmt.Errorf("%s: brand without key", op)
		}
		if _, exists := r.brands[b.Key]; exists {
			return nil, fmt.Errorf("%s: duplicate brand key %q", op, b.Key)
		}
		if len(b.Plans) == 0 {
			return nil, fmt.Errorf("%s: brand %q has no plans", op, b.Key)
		}
		r.brands[b.Key] = b
		r.order = append(r.order, b.Key)
	}
	return r, nil
}

// Load читает каталог брендов из yaml-файла.
func Load(path string) (*Registry, error) {
	const op = "brand.Load"
	var file catalogFile
	if err := cleanenv.ReadConfig(path, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(file.Brands) == 0 {
		return nil, fmt.Errorf("%s: no brands configured", op)
	}
	return NewRegistry(file.Brands)
}

// Get возвращает бренд по ключу.
func (r *Registry) Get(key string) (Brand, bool) {
	b, ok := r.brands[key]
	return b, ok
}

// Keys возвращает ключи брендов в порядке загрузки.
func (r *Registry) Keys() []string {
	return r.order
}

// FeedIDs собирает идентификаторы прайс-фида всех волатильных активов
// каталога — это список, который опрашивает кеш курсов.
func (r *Registry) FeedIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, key := range r.order {
		for _, a := range r.brands[key].Assets {
			if a.Stable || a.FeedID == "" || seen[a.FeedID] {
				continue
			}
			seen[a.FeedID] = true
			ids = append(ids, a.FeedID)
		}
	}
	return ids
}
