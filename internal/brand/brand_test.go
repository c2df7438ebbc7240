package brand

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kseleznyov/crypto-checkout/internal/models"
)

func testBrand(key string) Brand {
	return Brand{
		Key:  key,
		Name: "Test Store",
		Plans: []models.Plan{
			{ID: "basic", Label: "Basic", PriceUSD: 7},
			{ID: "pro", Label: "Pro", PriceUSD: 26.95, WasPriceUSD: 39.95},
		},
		Assets: []models.Asset{
			{ID: "btc", Label: "Bitcoin", FeedID: "bitcoin"},
			{ID: "usdt", Label: "Tether", Stable: true, Networks: []string{"trc20", "erc20"}},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry([]Brand{testBrand("alpha"), testBrand("beta")})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, reg.Keys())

	b, ok := reg.Get("alpha")
	require.True(t, ok)
	plan, ok := b.PlanByID("pro")
	require.True(t, ok)
	assert.Equal(t, 26.95, plan.PriceUSD)

	_, ok = reg.Get("gamma")
	assert.False(t, ok)
}

func TestNewRegistry_Invalid(t *testing.T) {
	_, err := NewRegistry([]Brand{testBrand("alpha"), testBrand("alpha")})
	assert.Error(t, err)

	noPlans := testBrand("empty")
	noPlans.Plans = nil
	_, err = NewRegistry([]Brand{noPlans})
	assert.Error(t, err)
}

func TestFeedIDs_SkipsStableAndDuplicates(t *testing.T) {
	reg, err := NewRegistry([]Brand{testBrand("alpha"), testBrand("beta")})
	require.NoError(t, err)

	// bitcoin встречается у обоих брендов, tether стейблкоин
	assert.Equal(t, []string{"bitcoin"}, reg.FeedIDs())
}

func TestLoad(t *testing.T) {
	content := `
brands:
  - key: alpha
    name: Alpha Keys
    styling:
      accent: "#ff6600"
    plans:
      - id: basic
        label: Basic
        price_usd: 7.00
      - id: pro
        label: Pro
        price_usd: 26.95
        was_price_usd: 39.95
        bandwidth: 10 Gbps
    assets:
      - id: btc
        label: Bitcoin
        feed_id: bitcoin
      - id: usdt
        label: Tether
        stable: true
        networks: [trc20, erc20]
`
	path := filepath.Join(t.TempDir(), "brands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)

	b, ok := reg.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "Alpha Keys", b.Name)
	assert.Equal(t, "#ff6600", b.Styling["accent"])

	asset, ok := b.AssetByID("usdt")
	require.True(t, ok)
	assert.True(t, asset.Stable)
	assert.True(t, asset.NeedsNetworkSelection())
	assert.True(t, asset.SupportsNetwork("trc20"))
	assert.False(t, asset.SupportsNetwork("bep20"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
