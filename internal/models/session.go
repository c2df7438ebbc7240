package models

// Phase — фаза жизненного цикла сессии оформления заказа.
type Phase string

const (
	// PhaseSelecting — пользователь выбирает план, актив, сеть и вводит email.
	PhaseSelecting Phase = "selecting"
	// PhaseLocking — переходная фаза: запрашиваются курс и адрес.
	PhaseLocking Phase = "locking"
	// PhasePaying — сумма и адрес зафиксированы, идёт обратный отсчёт.
	PhasePaying Phase = "paying"
	// PhaseExpired — платёжное окно истекло, требуется явный сброс.
	PhaseExpired Phase = "expired"
	// PhaseCancelled — сессия закрыта уборщиком, операции больше не принимаются.
	PhaseCancelled Phase = "cancelled"
)

// SessionSnapshot — read-only проекция состояния сессии для HTTP-слоя.
// Поля LockedAmount, Address и RemainingSeconds заполнены только в фазе
// Paying; PreviewAmount — предварительная (незафиксированная) сумма,
// пересчитываемая по текущему курсу в фазе Selecting.
type SessionSnapshot struct {
	ID               string `json:"id"`
	Brand            string `json:"brand"`
	Phase            Phase  `json:"phase"`
	PlanID           string `json:"plan_id,omitempty"`
	Asset            string `json:"asset,omitempty"`
	Network          string `json:"network,omitempty"`
	Email            string `json:"email,omitempty"`
	PreviewAmount    string `json:"preview_amount,omitempty"`
	LockedAmount     string `json:"locked_amount,omitempty"`
	Address          string `json:"address,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
	StatusMessage    string `json:"status_message,omitempty"`
	RateAgeSeconds   int    `json:"rate_age_seconds,omitempty"`
}
