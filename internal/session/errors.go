package session

import "errors"

// Таксономия ошибок оформления. Все ошибки локально восстановимы: каждая
// возвращает сессию в фазу выбора со своим пользовательским сообщением,
// ни одна не фатальна для процесса.
var (
	// ErrInvalidEmail — email не проходит синтаксическую проверку.
	ErrInvalidEmail = errors.New("session: invalid email")
	// ErrNetworkSelectionRequired — актив требует выбора сети, сеть не выбрана.
	ErrNetworkSelectionRequired = errors.New("session: network selection required")
	// ErrRateUnavailable — нет курса для волатильного актива.
	ErrRateUnavailable = errors.New("session: rate unavailable")
	// ErrPoolExhausted — нет свободного адреса для пары (актив, сеть).
	ErrPoolExhausted = errors.New("session: address pool exhausted")
	// ErrTransportFailure — прочие сетевые сбои при фиксации.
	ErrTransportFailure = errors.New("session: transport failure")

	// ErrNotSelecting — beginCheckout вызван вне фазы выбора.
	ErrNotSelecting = errors.New("session: not in selecting phase")
	// ErrUnknownPlan — план отсутствует в каталоге бренда.
	ErrUnknownPlan = errors.New("session: unknown plan")
	// ErrUnknownAsset — актив не принимается брендом.
	ErrUnknownAsset = errors.New("session: unknown asset")
	// ErrUnknownNetwork — сеть не поддерживается выбранным активом.
	ErrUnknownNetwork = errors.New("session: unknown network")
)

// Пользовательские сообщения статуса. На каждый проваленный guard —
// своё сообщение, чтобы покупатель понимал, что исправить.
const (
	msgInvalidEmail    = "Enter a valid email address to receive your key."
	msgNetworkRequired = "Select a network for this asset before continuing."
	msgRateUnavailable = "Exchange rate is temporarily unavailable. Try again in a moment."
	msgPoolExhausted   = "No payment address is available right now. Try again later."
	msgTransport       = "Something went wrong. Please try again."
	msgExpired         = "Payment window expired. Start over to get a fresh quote."
)

// statusFor сопоставляет ошибке фиксации сообщение статуса.
func statusFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return msgInvalidEmail
	case errors.Is(err, ErrNetworkSelectionRequired):
		return msgNetworkRequired
	case errors.Is(err, ErrRateUnavailable):
		return msgRateUnavailable
	case errors.Is(err, ErrPoolExhausted):
		return msgPoolExhausted
	default:
		return msgTransport
	}
}

// reasonFor сопоставляет ошибке метку причины для метрик.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, ErrNetworkSelectionRequired):
		return "network_selection_required"
	case errors.Is(err, ErrRateUnavailable):
		return "rate_unavailable"
	case errors.Is(err, ErrPoolExhausted):
		return "pool_exhausted"
	default:
		return "transport_failure"
	}
}
