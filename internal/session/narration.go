package session

// DefaultNarration — циклический список сообщений статуса в фазе оплаты.
// Сообщения крутятся по кругу исключительно ради ощущения прогресса и не
// несут информации о реальном состоянии платежа: сервис не наблюдает
// блокчейн, подтверждение оплаты происходит вне его.
var DefaultNarration = []string{
	"Waiting for your transfer...",
	"Checking payment status...",
	"Watching for the incoming transaction...",
	"Still waiting. Keep this page open...",
}
