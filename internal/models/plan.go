// Package models содержит доменные структуры витрины: тарифные планы,
// платёжные активы, снимки курсов и снимок состояния сессии оформления,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

// Plan представляет тарифный план из каталога бренда.
// Каталог загружается один раз при старте и не изменяется во время работы.
type Plan struct {
	ID          string  `yaml:"id" json:"id"`                                           // Идентификатор плана внутри бренда
	Label       string  `yaml:"label" json:"label"`                                     // Отображаемое название
	PriceUSD    float64 `yaml:"price_usd" json:"price_usd"`                             // Цена в долларах
	WasPriceUSD float64 `yaml:"was_price_usd,omitempty" json:"was_price_usd,omitempty"` // Старая цена для зачёркивания (0 — нет)
	Bandwidth   string  `yaml:"bandwidth,omitempty" json:"bandwidth,omitempty"`         // Аннотация пропускной способности
}
