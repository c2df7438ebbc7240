// Package services содержит бизнес-логику управления сессиями оформления:
// создание и поиск сессий, делегирование операций движку, журналирование
// фиксаций и публикацию событий для внешнего воркера выдачи ключей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kseleznyov/crypto-checkout/internal/brand"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/metrics"
	"github.com/kseleznyov/crypto-checkout/internal/models"
	"github.com/kseleznyov/crypto-checkout/internal/session"
)

// ErrBrandNotFound — бренд отсутствует в каталоге.
var ErrBrandNotFound = errors.New("checkout: brand not found")

// ErrSessionNotFound — сессия не существует или выселена уборщиком.
var ErrSessionNotFound = errors.New("checkout: session not found")

// Journal записывает зафиксированные попытки оформления.
type Journal interface {
	SaveAttempt(ctx context.Context, attempt models.CheckoutAttempt) error
	MarkOutcome(ctx context.Context, sessionID, outcome string) error
}

// EventPublisher публикует события оформления во внешнюю шину.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// CheckoutService управляет живыми сессиями оформления. Журнал и шина
// необязательны: их отсутствие не ломает оформление, фиксация первична.
type CheckoutService struct {
	brands    *brand.Registry
	rates     session.RateSource
	pool      session.AddressProvider
	journal   Journal
	publisher EventPublisher
	opts      session.Options
	log       *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewCheckoutService создает новый экземпляр CheckoutService.
func NewCheckoutService(brands *brand.Registry, rates session.RateSource, pool session.AddressProvider,
	journal Journal, publisher EventPublisher, opts session.Options, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		brands:    brands,
		rates:     rates,
		pool:      pool,
		journal:   journal,
		publisher: publisher,
		opts:      opts,
		log:       log,
		sessions:  make(map[string]*session.Session),
	}
}

// BrandCatalog возвращает конфигурацию бренда для витрины.
func (s *CheckoutService) BrandCatalog(brandKey string) (brand.Brand, error) {
	b, ok := s.brands.Get(brandKey)
	if !ok {
		return brand.Brand{}, fmt.Errorf("%q: %w", brandKey, ErrBrandNotFound)
	}
	return b, nil
}

// CreateSession создаёт сессию, привязанную к бренду. Необязательный
// planID сразу выбирает план из каталога.
func (s *CheckoutService) CreateSession(ctx context.Context, brandKey, planID string) (models.SessionSnapshot, error) {
	b, ok := s.brands.Get(brandKey)
	if !ok {
		return models.SessionSnapshot{}, fmt.Errorf("%q: %w", brandKey, ErrBrandNotFound)
	}

	sess := session.New(uuid.NewString(), b, session.Deps{
		Rates: s.rates,
		Pool:  s.pool,
		Sink:  s,
		Log:   s.log,
	}, s.opts)

	if planID != "" {
		if err := sess.SelectPlan(ctx, planID); err != nil {
			return models.SessionSnapshot{}, err
		}
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()

	s.log.Info("created checkout session",
		slog.String("session_id", sess.ID()), slog.String("brand", brandKey))
	return sess.Snapshot(), nil
}

func (s *CheckoutService) get(id string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// Snapshot возвращает текущее состояние сессии.
func (s *CheckoutService) Snapshot(id string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SelectPlan выбирает план в сессии.
func (s *CheckoutService) SelectPlan(ctx context.Context, id, planID string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	if err := sess.SelectPlan(ctx, planID); err != nil {
		return models.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SelectAsset выбирает платёжный актив в сессии.
func (s *CheckoutService) SelectAsset(ctx context.Context, id, assetID string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	if err := sess.SelectAsset(ctx, assetID); err != nil {
		return models.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SelectNetwork выбирает сеть в сессии.
func (s *CheckoutService) SelectNetwork(ctx context.Context, id, network string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	if err := sess.SelectNetwork(ctx, network); err != nil {
		return models.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SetEmail сохраняет email покупателя; в фазе оплаты вызов игнорируется.
func (s *CheckoutService) SetEmail(id, email string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	sess.SetEmail(email)
	return sess.Snapshot(), nil
}

// BeginCheckout запускает фиксацию котировки и адреса.
func (s *CheckoutService) BeginCheckout(ctx context.Context, id string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	if err := sess.BeginCheckout(ctx); err != nil {
		return sess.Snapshot(), err
	}
	return sess.Snapshot(), nil
}

// Cancel отменяет оформление и возвращает сессию в фазу выбора.
func (s *CheckoutService) Cancel(ctx context.Context, id string) (models.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	sess.Cancel(ctx)
	return sess.Snapshot(), nil
}

// RunJanitor выселяет простаивающие сессии до отмены контекста.
// Выселение останавливает таймеры сессии, чтобы они не утекали.
func (s *CheckoutService) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session janitor stopped")
			return
		case <-ticker.C:
			s.evictIdle(ctx, ttl)
		}
	}
}

func (s *CheckoutService) evictIdle(ctx context.Context, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	var evicted []*session.Session
	for id, sess := range s.sessions {
		if sess.IdleSince().Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.Close(ctx)
		metrics.ActiveSessions.Dec()
		s.log.Info("evicted idle session", slog.String("session_id", sess.ID()))
	}
}

// routingKey отрезает префикс "checkout." из типа события.
func routingKey(eventType string) string {
	return strings.TrimPrefix(eventType, "checkout.")
}

// OnLocked журналирует фиксацию и публикует событие для воркера ключей.
// Ошибки журнала и шины только логируются: фиксация уже состоялась,
// откатывать её из-за вспомогательной инфраструктуры нельзя.
func (s *CheckoutService) OnLocked(event models.CheckoutEvent) {
	if s.journal != nil {
		attempt := models.CheckoutAttempt{
			SessionID: event.SessionID,
			Brand:     event.Brand,
			PlanID:    event.PlanID,
			Asset:     event.Asset,
			Network:   event.Network,
			Email:     event.Email,
			Amount:    event.Amount,
			Address:   event.Address,
			Deadline:  event.Deadline,
		}
		if err := s.journal.SaveAttempt(context.Background(), attempt); err != nil {
			s.log.Error("failed to journal checkout attempt", sl.Err(err))
		}
	}
	s.publish(event)
}

// OnExpired закрывает запись журнала и публикует событие истечения.
func (s *CheckoutService) OnExpired(event models.CheckoutEvent) {
	if s.journal != nil {
		if err := s.journal.MarkOutcome(context.Background(), event.SessionID, models.AttemptOutcomeExpired); err != nil {
			s.log.Error("failed to mark attempt expired", sl.Err(err))
		}
	}
	s.publish(event)
}

// OnCancelled закрывает запись журнала и публикует событие отмены.
func (s *CheckoutService) OnCancelled(event models.CheckoutEvent) {
	if s.journal != nil {
		if err := s.journal.MarkOutcome(context.Background(), event.SessionID, models.AttemptOutcomeCancelled); err != nil {
			s.log.Error("failed to mark attempt cancelled", sl.Err(err))
		}
	}
	s.publish(event)
}

func (s *CheckoutService) publish(event models.CheckoutEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey(event.Type), event); err != nil {
		s.log.Error("failed to publish checkout event",
			slog.String("type", event.Type), sl.Err(err))
	}
}
