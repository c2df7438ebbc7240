package models

import "time"

// Типы событий оформления, публикуемых во внешнюю шину.
const (
	EventCheckoutLocked    = "checkout.locked"
	EventCheckoutExpired   = "checkout.expired"
	EventCheckoutCancelled = "checkout.cancelled"
)

// CheckoutEvent — событие жизненного цикла оформления для внешнего
// воркера выдачи ключей. Подтверждение оплаты и отправка письма происходят
// целиком вне этого сервиса.
type CheckoutEvent struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	Brand      string    `json:"brand"`
	PlanID     string    `json:"plan_id"`
	Asset      string    `json:"asset"`
	Network    string    `json:"network,omitempty"`
	Email      string    `json:"email"`
	Amount     string    `json:"amount"`
	Address    string    `json:"address"`
	Deadline   time.Time `json:"deadline"`
	OccurredAt time.Time `json:"occurred_at"`
}
