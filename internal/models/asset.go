package models

// Asset описывает платёжный актив, принимаемый витриной.
// Для стейблкоинов (Stable=true) курс не запрашивается: сумма равна цене плана.
// Непустой список Networks означает, что перед оплатой пользователь обязан
// выбрать сеть.
type Asset struct {
	ID       string   `yaml:"id" json:"id"`                             // Символ актива, например "btc"
	Label    string   `yaml:"label" json:"label"`                       // Отображаемое название
	FeedID   string   `yaml:"feed_id,omitempty" json:"-"`               // Идентификатор актива в прайс-фиде, например "bitcoin"
	Stable   bool     `yaml:"stable,omitempty" json:"stable,omitempty"` // Привязан ли актив 1:1 к доллару
	Networks []string `yaml:"networks,omitempty" json:"networks,omitempty"`
}

// NeedsNetworkSelection сообщает, обязан ли пользователь выбрать сеть.
func (a Asset) NeedsNetworkSelection() bool {
	return len(a.Networks) > 0
}

// SupportsNetwork проверяет, входит ли сеть в список поддерживаемых.
func (a Asset) SupportsNetwork(network string) bool {
	for _, n := range a.Networks {
		if n == network {
			return true
		}
	}
	return false
}
