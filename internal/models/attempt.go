package models

import "time"

// Возможные исходы попытки оформления в журнале.
const (
	AttemptOutcomePending   = "pending"
	AttemptOutcomeExpired   = "expired"
	AttemptOutcomeCancelled = "cancelled"
)

// CheckoutAttempt — запись журнала попыток оформления. Журнал ведётся
// только для сверки и выдачи ключей внешними процессами; состояние самой
// сессии живёт в памяти и в базу не попадает.
type CheckoutAttempt struct {
	SessionID string
	Brand     string
	PlanID    string
	Asset     string
	Network   string
	Email     string
	Amount    string
	Address   string
	Deadline  time.Time
	Outcome   string
}
