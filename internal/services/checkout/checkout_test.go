package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kseleznyov/crypto-checkout/internal/addresspool"
	"github.com/kseleznyov/crypto-checkout/internal/brand"
	"github.com/kseleznyov/crypto-checkout/internal/models"
	"github.com/kseleznyov/crypto-checkout/internal/session"
)

type stubRates struct {
	rates   map[string]float64
	takenAt time.Time
}

func (r *stubRates) Rate(feedID string) (float64, bool) {
	v, ok := r.rates[feedID]
	return v, ok
}

func (r *stubRates) Snapshot() *models.RateSnapshot {
	return &models.RateSnapshot{Rates: r.rates, TakenAt: r.takenAt}
}

type JournalMock struct{ mock.Mock }

func (m *JournalMock) SaveAttempt(ctx context.Context, attempt models.CheckoutAttempt) error {
	return m.Called(ctx, attempt).Error(0)
}

func (m *JournalMock) MarkOutcome(ctx context.Context, sessionID, outcome string) error {
	return m.Called(ctx, sessionID, outcome).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func testRegistry(t *testing.T) *brand.Registry {
	t.Helper()
	reg, err := brand.NewRegistry([]brand.Brand{{
		Key:  "alpha",
		Name: "Alpha Keys",
		Plans: []models.Plan{
			{ID: "basic", Label: "Basic", PriceUSD: 7},
			{ID: "pro", Label: "Pro", PriceUSD: 26.95},
		},
		Assets: []models.Asset{
			{ID: "btc", Label: "Bitcoin", FeedID: "bitcoin"},
			{ID: "usdt", Label: "Tether", Stable: true, Networks: []string{"trc20", "erc20"}},
		},
	}})
	require.NoError(t, err)
	return reg
}

func newTestService(t *testing.T, journal Journal, publisher EventPublisher) *CheckoutService {
	t.Helper()
	pool := addresspool.NewStatic([]addresspool.PoolConfig{
		{Asset: "btc", Addresses: []string{"bc1-a", "bc1-b"}},
		{Asset: "usdt", Network: "trc20", Addresses: []string{"T-a"}},
	}, addresspool.NewMemoryLeaser(30*time.Minute))
	rates := &stubRates{rates: map[string]float64{"bitcoin": 65000}, takenAt: time.Now()}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	opts := session.Options{Window: 30 * time.Minute, Tick: time.Hour, NarrationTick: time.Hour}
	return NewCheckoutService(testRegistry(t), rates, pool, journal, publisher, opts, log)
}

func TestCheckoutService_CreateAndLookup(t *testing.T) {
	svc := newTestService(t, nil, nil)

	snap, err := svc.CreateSession(context.Background(), "alpha", "pro")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSelecting, snap.Phase)
	assert.Equal(t, "pro", snap.PlanID)

	got, err := svc.Snapshot(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)

	_, err = svc.Snapshot("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.CreateSession(context.Background(), "beta", "")
	assert.ErrorIs(t, err, ErrBrandNotFound)
}

func TestCheckoutService_BeginCheckout_JournalsAndPublishes(t *testing.T) {
	journal := new(JournalMock)
	publisher := new(PublisherMock)
	journal.On("SaveAttempt", mock.Anything, mock.MatchedBy(func(a models.CheckoutAttempt) bool {
		return a.Brand == "alpha" && a.PlanID == "pro" && a.Amount == "0.00041461"
	})).Return(nil).Once()
	publisher.On("Publish", "locked", mock.Anything).Return(nil).Once()

	svc := newTestService(t, journal, publisher)
	snap, err := svc.CreateSession(context.Background(), "alpha", "pro")
	require.NoError(t, err)

	snap, err = svc.BeginCheckout(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePaying, snap.Phase)
	assert.Equal(t, "0.00041461", snap.LockedAmount)
	assert.Equal(t, "bc1-a", snap.Address)

	journal.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCheckoutService_Cancel_MarksOutcome(t *testing.T) {
	journal := new(JournalMock)
	publisher := new(PublisherMock)
	journal.On("SaveAttempt", mock.Anything, mock.Anything).Return(nil).Once()
	publisher.On("Publish", "locked", mock.Anything).Return(nil).Once()
	journal.On("MarkOutcome", mock.Anything, mock.Anything, models.AttemptOutcomeCancelled).Return(nil).Once()
	publisher.On("Publish", "cancelled", mock.Anything).Return(nil).Once()

	svc := newTestService(t, journal, publisher)
	snap, err := svc.CreateSession(context.Background(), "alpha", "pro")
	require.NoError(t, err)

	_, err = svc.BeginCheckout(context.Background(), snap.ID)
	require.NoError(t, err)

	snap, err = svc.Cancel(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSelecting, snap.Phase)

	journal.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCheckoutService_EvictIdle(t *testing.T) {
	svc := newTestService(t, nil, nil)
	snap, err := svc.CreateSession(context.Background(), "alpha", "")
	require.NoError(t, err)

	// Свежая сессия переживает уборку.
	svc.evictIdle(context.Background(), time.Hour)
	_, err = svc.Snapshot(snap.ID)
	require.NoError(t, err)

	// С нулевым TTL любая сессия считается простаивающей.
	svc.evictIdle(context.Background(), 0)
	_, err = svc.Snapshot(snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "locked", routingKey(models.EventCheckoutLocked))
	assert.Equal(t, "expired", routingKey(models.EventCheckoutExpired))
	assert.Equal(t, "cancelled", routingKey(models.EventCheckoutCancelled))
}
