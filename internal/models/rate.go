package models

import "time"

// RateSnapshot — неизменяемый снимок курсов активов к доллару на момент
// опроса прайс-фида. Кеш курсов хранит не более одного актуального снимка;
// новый снимок замещает предыдущий целиком, старые снимки не мутируются.
type RateSnapshot struct {
	Rates   map[string]float64 // Ключ — FeedID актива
	TakenAt time.Time
}

// Rate возвращает курс актива и признак его наличия в снимке.
func (s *RateSnapshot) Rate(feedID string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	rate, ok := s.Rates[feedID]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// Age возвращает возраст снимка относительно переданного момента времени.
func (s *RateSnapshot) Age(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	return now.Sub(s.TakenAt)
}
