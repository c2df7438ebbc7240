// Package metrics регистрирует Prometheus-метрики сервиса оформления.
// Метрики отдаются наружу стандартным promhttp-обработчиком на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LocksTotal — количество успешных фиксаций суммы и адреса.
	LocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_locks_total",
		Help: "Successful quote and address locks.",
	})

	// LockFailuresTotal — отказ фиксации по причинам из таксономии ошибок.
	LockFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_lock_failures_total",
		Help: "Failed beginCheckout calls by reason.",
	}, []string{"reason"})

	// ExpiredTotal — количество истёкших платёжных окон.
	ExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_expired_total",
		Help: "Payment windows that reached the deadline.",
	})

	// ActiveSessions — число живых сессий оформления.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_active_sessions",
		Help: "Checkout sessions currently held in memory.",
	})

	// RateRefreshFailuresTotal — неудачные опросы прайс-фида.
	RateRefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_rate_refresh_failures_total",
		Help: "Failed price feed refresh attempts.",
	})

	// RateSnapshotAgeSeconds — возраст последнего снимка курсов.
	RateSnapshotAgeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_rate_snapshot_age_seconds",
		Help: "Age of the last served rate snapshot.",
	})
)
