// Package session реализует конечный автомат сессии оформления заказа.
//
// Фазы: selecting -> locking -> paying -> expired, с возвратом в selecting
// по отмене, сбросу или смене выбора. Сумма и адрес фиксируются атомарно:
// либо записываются оба после успешного расчёта котировки и выдачи адреса,
// либо ни один, и сессия возвращается в выбор с сообщением об ошибке.
//
// В фазе оплаты внутри сессии живут два таймера — секундный обратный отсчёт
// и циклическая смена статусных сообщений. Оба останавливаются одним
// stop-каналом при любом выходе из фазы оплаты, чтобы не осталось таймера,
// мутирующего уже сброшенную сессию. Поздний результат фиксации после
// сброса отбрасывается по счётчику поколений.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator"

	"github.com/kseleznyov/crypto-checkout/internal/addresspool"
	"github.com/kseleznyov/crypto-checkout/internal/brand"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/metrics"
	"github.com/kseleznyov/crypto-checkout/internal/models"
	"github.com/kseleznyov/crypto-checkout/internal/quote"
)

// RateSource отдаёт последний известный курс актива, никогда не блокируясь.
type RateSource interface {
	Rate(feedID string) (float64, bool)
	Snapshot() *models.RateSnapshot
}

// AddressProvider выдаёт и освобождает платёжные адреса.
type AddressProvider interface {
	Acquire(ctx context.Context, asset, network string) (string, error)
	Release(ctx context.Context, asset, network, address string) error
}

// Sink получает события переходов сессии (журнал, шина, метрики хоста).
// Вызовы идут вне мьютекса сессии и не должны блокировать надолго.
type Sink interface {
	OnLocked(event models.CheckoutEvent)
	OnExpired(event models.CheckoutEvent)
	OnCancelled(event models.CheckoutEvent)
}

// Options — настройки движка сессии.
type Options struct {
	Window        time.Duration // платёжное окно, по умолчанию 30 минут
	Tick          time.Duration // шаг обратного отсчёта, по умолчанию секунда
	NarrationTick time.Duration // шаг смены статусных сообщений, по умолчанию 1.6 секунды
	Narration     []string      // циклический список сообщений фазы оплаты
}

func (o Options) normalized() Options {
	if o.Window <= 0 {
		o.Window = 30 * time.Minute
	}
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.NarrationTick <= 0 {
		o.NarrationTick = 1600 * time.Millisecond
	}
	if len(o.Narration) == 0 {
		o.Narration = DefaultNarration
	}
	return o
}

// Deps — коллабораторы движка.
type Deps struct {
	Rates RateSource
	Pool  AddressProvider
	Sink  Sink
	Log   *slog.Logger
}

// Session — изменяемый агрегат одной попытки оформления. Все методы
// безопасны для конкурентного вызова.
type Session struct {
	id    string
	brand brand.Brand
	deps  Deps
	opts  Options

	validate *validator.Validate
	now      func() time.Time

	mu         sync.Mutex
	phase      models.Phase
	plan       models.Plan
	asset      models.Asset
	network    string
	email      string
	generation uint64
	locked     lockState
	narrIdx    int
	status     string
	stop       chan struct{}
	touchedAt  time.Time
}

// lockState — поля, устанавливаемые вместе при входе в фазу оплаты
// и очищаемые вместе при сбросе.
type lockState struct {
	amount    string
	address   string
	deadline  time.Time
	remaining int
}

// New создаёт сессию в фазе выбора. По мотивам исходных страниц первый
// план и первый актив каталога предвыбраны, поэтому guard-ошибок
// "план не выбран" не существует.
func New(id string, b brand.Brand, deps Deps, opts Options) *Session {
	s := &Session{
		id:       id,
		brand:    b,
		deps:     deps,
		opts:     opts.normalized(),
		validate: validator.New(),
		now:      time.Now,
		phase:    models.PhaseSelecting,
		plan:     b.Plans[0],
	}
	if len(b.Assets) > 0 {
		s.asset = b.Assets[0]
	}
	s.touchedAt = s.now()
	return s
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string { return s.id }

// Brand возвращает бренд, к которому привязана сессия.
func (s *Session) Brand() brand.Brand { return s.brand }

// IdleSince возвращает момент последнего обращения к сессии.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// SelectPlan выбирает план из каталога бренда. Всегда допустим: если сумма
// уже зафиксирована, сначала неявно выполняется отмена.
func (s *Session) SelectPlan(ctx context.Context, planID string) error {
	const op = "session.SelectPlan"
	plan, ok := s.brand.PlanByID(planID)
	if !ok {
		return fmt.Errorf("%s: %q: %w", op, planID, ErrUnknownPlan)
	}

	s.mu.Lock()
	s.resetToSelectingLocked()
	s.plan = plan
	s.touchedAt = s.now()
	s.mu.Unlock()
	return nil
}

// SelectAsset выбирает платёжный актив. Смена актива сбрасывает выбранную
// сеть и, как и смена плана, неявно отменяет зафиксированную оплату.
// Предварительная сумма при этом лишь пересчитывается, lockedAmount
// не затрагивается.
func (s *Session) SelectAsset(ctx context.Context, assetID string) error {
	const op = "session.SelectAsset"
	asset, ok := s.brand.AssetByID(assetID)
	if !ok {
		return fmt.Errorf("%s: %q: %w", op, assetID, ErrUnknownAsset)
	}

	s.mu.Lock()
	s.resetToSelectingLocked()
	if s.asset.ID != asset.ID {
		s.network = ""
	}
	s.asset = asset
	s.touchedAt = s.now()
	s.mu.Unlock()
	return nil
}

// SelectNetwork выбирает сеть для активов, существующих в нескольких сетях.
func (s *Session) SelectNetwork(ctx context.Context, network string) error {
	const op = "session.SelectNetwork"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.asset.SupportsNetwork(network) {
		return fmt.Errorf("%s: %q for %q: %w", op, network, s.asset.ID, ErrUnknownNetwork)
	}
	s.resetToSelectingLocked()
	s.network = network
	s.touchedAt = s.now()
	return nil
}

// SetEmail сохраняет email покупателя. В фазе оплаты email заблокирован:
// вызов не имеет наблюдаемого эффекта до возврата в фазу выбора.
func (s *Session) SetEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != models.PhaseSelecting {
		return
	}
	s.email = email
	s.touchedAt = s.now()
}

// BeginCheckout фиксирует котировку и адрес. Проверяет guard-условия,
// проходит фазу locking и при успехе переводит сессию в фазу оплаты,
// запуская обратный отсчёт и смену статусных сообщений. Любая ошибка
// возвращает сессию в фазу выбора без частичной фиксации.
func (s *Session) BeginCheckout(ctx context.Context) error {
	const op = "session.BeginCheckout"

	s.mu.Lock()
	if s.phase != models.PhaseSelecting {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotSelecting)
	}
	s.touchedAt = s.now()

	if err := s.checkGuardsLocked(); err != nil {
		s.status = statusFor(err)
		s.mu.Unlock()
		metrics.LockFailuresTotal.WithLabelValues(reasonFor(err)).Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	// guard пройден: курс волатильного актива гарантированно есть
	var rate float64
	if !s.asset.Stable {
		rate, _ = s.deps.Rates.Rate(s.asset.FeedID)
	}

	s.phase = models.PhaseLocking
	gen := s.generation
	plan, asset, network := s.plan, s.asset, s.network
	s.mu.Unlock()

	amount, address, err := s.acquireLock(ctx, plan, asset, network, rate)

	s.mu.Lock()
	if s.generation != gen || s.phase != models.PhaseLocking {
		// сессию сбросили, пока шла фиксация: поздний результат отбрасываем
		s.mu.Unlock()
		if err == nil {
			s.releaseAddress(asset.ID, network, address)
		}
		return nil
	}

	if err != nil {
		s.phase = models.PhaseSelecting
		s.status = statusFor(err)
		s.mu.Unlock()
		metrics.LockFailuresTotal.WithLabelValues(reasonFor(err)).Inc()
		s.deps.Log.Warn("checkout lock failed",
			slog.String("session_id", s.id), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.locked = lockState{
		amount:    amount,
		address:   address,
		deadline:  s.now().Add(s.opts.Window),
		remaining: int(s.opts.Window / time.Second),
	}
	s.phase = models.PhasePaying
	s.narrIdx = 0
	s.status = s.opts.Narration[0]
	s.stop = make(chan struct{})
	go s.runTimers(s.stop)
	event := s.eventLocked(models.EventCheckoutLocked)
	s.mu.Unlock()

	metrics.LocksTotal.Inc()
	s.deps.Log.Info("checkout locked",
		slog.String("session_id", s.id),
		slog.String("asset", asset.ID),
		slog.String("amount", amount))
	if s.deps.Sink != nil {
		s.deps.Sink.OnLocked(event)
	}
	return nil
}

// checkGuardsLocked проверяет guard-условия beginCheckout. Вызывается под
// мьютексом. Каждый провал — отдельная ошибка с отдельным сообщением.
func (s *Session) checkGuardsLocked() error {
	if err := s.validate.Var(s.email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	if s.asset.NeedsNetworkSelection() && s.network == "" {
		return ErrNetworkSelectionRequired
	}
	if !s.asset.Stable {
		if _, ok := s.deps.Rates.Rate(s.asset.FeedID); !ok {
			return ErrRateUnavailable
		}
	}
	return nil
}

// acquireLock выполняет сетевую часть фиксации: расчёт суммы и выдачу
// адреса. Сумма считается до обращения за адресом, чтобы при ошибке
// расчёта не занимать адрес впустую.
func (s *Session) acquireLock(ctx context.Context, plan models.Plan, asset models.Asset, network string, rate float64) (amount, address string, err error) {
	amount, err = quote.ForAsset(asset, plan.PriceUSD, rate)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrRateUnavailable, err)
	}

	address, err = s.deps.Pool.Acquire(ctx, asset.ID, network)
	if err != nil {
		if errors.Is(err, addresspool.ErrPoolExhausted) {
			return "", "", fmt.Errorf("%w: %w", ErrPoolExhausted, err)
		}
		return "", "", fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	return amount, address, nil
}

// Cancel отменяет оформление и возвращает сессию в фазу выбора.
// Допустим в любой фазе; в фазе выбора ничего не делает.
func (s *Session) Cancel(ctx context.Context) {
	s.mu.Lock()
	if s.phase == models.PhaseSelecting {
		s.mu.Unlock()
		return
	}
	wasPaying := s.phase == models.PhasePaying
	var event models.CheckoutEvent
	if wasPaying {
		event = s.eventLocked(models.EventCheckoutCancelled)
	}
	s.resetToSelectingLocked()
	s.touchedAt = s.now()
	s.mu.Unlock()

	if wasPaying && s.deps.Sink != nil {
		s.deps.Sink.OnCancelled(event)
	}
}

// Reset — синоним Cancel для выхода из терминальных фаз (expired).
func (s *Session) Reset(ctx context.Context) {
	s.Cancel(ctx)
}

// Close останавливает таймеры и помечает сессию отменённой. Используется
// уборщиком при выселении простаивающих сессий.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	s.stopTimersLocked()
	s.releaseLockedAddressLocked()
	s.locked = lockState{}
	s.generation++
	s.phase = models.PhaseCancelled
	s.mu.Unlock()
}

// resetToSelectingLocked возвращает сессию в фазу выбора: останавливает
// оба таймера, снимает аренду адреса, очищает сумму и адрес вместе и
// снимает блокировку email. Выбранные план, актив и сеть сохраняются как
// значения по умолчанию для следующей попытки.
func (s *Session) resetToSelectingLocked() {
	s.stopTimersLocked()
	s.releaseLockedAddressLocked()
	s.locked = lockState{}
	s.generation++
	s.phase = models.PhaseSelecting
	s.status = ""
	s.narrIdx = 0
}

func (s *Session) stopTimersLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) releaseLockedAddressLocked() {
	if s.locked.address == "" {
		return
	}
	s.releaseAddress(s.asset.ID, s.network, s.locked.address)
}

// releaseAddress снимает аренду в фоне: освобождение не должно задерживать
// пользовательскую операцию и не критично при сбое — аренда истечёт по TTL.
func (s *Session) releaseAddress(assetID, network, address string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.deps.Pool.Release(ctx, assetID, network, address); err != nil {
			s.deps.Log.Warn("failed to release address lease",
				slog.String("session_id", s.id), sl.Err(err))
		}
	}()
}

// runTimers крутит обратный отсчёт и смену статусных сообщений, пока
// сессия в фазе оплаты. Оба таймера умирают от одного stop-канала.
func (s *Session) runTimers(stop <-chan struct{}) {
	countdown := time.NewTicker(s.opts.Tick)
	defer countdown.Stop()
	narration := time.NewTicker(s.opts.NarrationTick)
	defer narration.Stop()

	for {
		select {
		case <-stop:
			return
		case <-countdown.C:
			if s.tickCountdown() {
				return
			}
		case <-narration.C:
			s.tickNarration()
		}
	}
}

// tickCountdown уменьшает отсчёт на единицу. Возвращает true, когда
// таймеры пора остановить. Переход в expired срабатывает ровно один раз.
func (s *Session) tickCountdown() bool {
	s.mu.Lock()
	if s.phase != models.PhasePaying {
		s.mu.Unlock()
		return true
	}

	s.locked.remaining--
	if s.locked.remaining > 0 {
		s.mu.Unlock()
		return false
	}

	s.locked.remaining = 0
	s.phase = models.PhaseExpired
	s.status = msgExpired
	s.stop = nil // канал закрывает вызывающий runTimers своим выходом
	s.releaseLockedAddressLocked()
	event := s.eventLocked(models.EventCheckoutExpired)
	s.mu.Unlock()

	metrics.ExpiredTotal.Inc()
	s.deps.Log.Info("payment window expired", slog.String("session_id", s.id))
	if s.deps.Sink != nil {
		s.deps.Sink.OnExpired(event)
	}
	return true
}

// tickNarration продвигает циклическое статусное сообщение фазы оплаты.
func (s *Session) tickNarration() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != models.PhasePaying {
		return
	}
	s.narrIdx = (s.narrIdx + 1) % len(s.opts.Narration)
	s.status = s.opts.Narration[s.narrIdx]
}

// eventLocked собирает событие перехода из текущего состояния.
// Вызывается под мьютексом.
func (s *Session) eventLocked(eventType string) models.CheckoutEvent {
	return models.CheckoutEvent{
		Type:       eventType,
		SessionID:  s.id,
		Brand:      s.brand.Key,
		PlanID:     s.plan.ID,
		Asset:      s.asset.ID,
		Network:    s.network,
		Email:      s.email,
		Amount:     s.locked.amount,
		Address:    s.locked.address,
		Deadline:   s.locked.deadline,
		OccurredAt: s.now(),
	}
}

// Snapshot возвращает read-only проекцию состояния сессии.
// В фазе выбора дополнительно считается предварительная сумма по текущему
// курсу; фиксированную сумму она никогда не затрагивает.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.SessionSnapshot{
		ID:            s.id,
		Brand:         s.brand.Key,
		Phase:         s.phase,
		PlanID:        s.plan.ID,
		Asset:         s.asset.ID,
		Network:       s.network,
		Email:         s.email,
		StatusMessage: s.status,
	}

	if rateSnap := s.deps.Rates.Snapshot(); rateSnap != nil {
		snap.RateAgeSeconds = int(rateSnap.Age(s.now()).Seconds())
	}

	switch s.phase {
	case models.PhaseSelecting:
		snap.PreviewAmount = s.previewAmountLocked()
	case models.PhasePaying, models.PhaseExpired:
		snap.LockedAmount = s.locked.amount
		snap.Address = s.locked.address
		snap.RemainingSeconds = s.locked.remaining
	}
	return snap
}

// previewAmountLocked считает незафиксированную сумму для витрины.
// Нет курса — нет предпросмотра, это не ошибка.
func (s *Session) previewAmountLocked() string {
	if s.asset.Stable {
		return quote.ForStable(s.plan.PriceUSD)
	}
	rate, ok := s.deps.Rates.Rate(s.asset.FeedID)
	if !ok {
		return ""
	}
	amount, err := quote.ForFloating(s.plan.PriceUSD, rate)
	if err != nil {
		return ""
	}
	return amount
}
