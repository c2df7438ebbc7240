package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kseleznyov/crypto-checkout/internal/models"
)

func TestForFloating(t *testing.T) {
	tests := []struct {
		name     string
		priceUSD float64
		rate     float64
		want     string
		wantErr  bool
	}{
		{
			// 7/64000 = 0.000109375: усечение вниз, не округление
			name:     "усечение вместо округления",
			priceUSD: 7.00,
			rate:     64000,
			want:     "0.00010937",
		},
		{
			name:     "сценарий из каталога",
			priceUSD: 26.95,
			rate:     65000,
			want:     "0.00041461",
		},
		{
			name:     "сумма больше единицы",
			priceUSD: 150,
			rate:     2.5,
			want:     "60.00000000",
		},
		{
			name:     "ровное деление без остатка",
			priceUSD: 10,
			rate:     1000,
			want:     "0.01000000",
		},
		{
			name:     "нулевой курс",
			priceUSD: 10,
			rate:     0,
			wantErr:  true,
		},
		{
			name:     "отрицательный курс",
			priceUSD: 10,
			rate:     -5,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForFloating(tt.priceUSD, tt.rate)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForStable(t *testing.T) {
	assert.Equal(t, "26.95", ForStable(26.95))
	assert.Equal(t, "7.00", ForStable(7))
}

func TestForAsset(t *testing.T) {
	stable := models.Asset{ID: "usdt", Stable: true}
	floating := models.Asset{ID: "btc", FeedID: "bitcoin"}

	// для стейблкоина курс игнорируется, даже нулевой
	got, err := ForAsset(stable, 12.50, 0)
	require.NoError(t, err)
	assert.Equal(t, "12.50", got)

	got, err = ForAsset(floating, 26.95, 65000)
	require.NoError(t, err)
	assert.Equal(t, "0.00041461", got)
}
