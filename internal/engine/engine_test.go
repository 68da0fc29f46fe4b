package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pricelens/internal/config"
	"pricelens/internal/model"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveRecommendation(ctx context.Context, rec model.StoredRecommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) LogCompetitorQuote(ctx context.Context, quote model.CompetitorQuote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockRepository) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testRecords() []model.ProductChannelRecord {
	return []model.ProductChannelRecord{
		{
			SKU: "NK-CC-35G", Name: "Nakd Cashew Cookie Bar 35g", Brand: "Nakd", Channel: "Amazon UK",
			CostPrice: 0.85, PackagingCost: 0.05, ShippingCost: 0.15, ChannelFee: 0.20,
			SellingPrice: 1.35, Volume: 2500, CompetitorPrice: 1.45, DemandElasticity: -1.2,
		},
		{
			SKU: "NK-CC-35G", Name: "Nakd Cashew Cookie Bar 35g", Brand: "Nakd", Channel: "Shopify",
			CostPrice: 0.85, PackagingCost: 0.05, ShippingCost: 0.40, ChannelFee: 0.06,
			SellingPrice: 1.49, Volume: 1500, CompetitorPrice: 1.59, DemandElasticity: -1.4,
		},
		{
			SKU: "GR-VB-50G", Name: "Graze Vanilla Bliss 50g", Brand: "Graze", Channel: "Amazon UK",
			CostPrice: 1.20, PackagingCost: 0.06, ShippingCost: 0.18, ChannelFee: 0.30,
			SellingPrice: 1.99, Volume: 1800, CompetitorPrice: 2.15, DemandElasticity: -1.5,
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			DefaultTargetMarginPct: 25,
			TopOpportunities:       2,
		},
	}
}

func testEngine(repo *MockRepository) *Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewEngine(logger, repo, testConfig(), testRecords())
}

func TestEngine_ProcessQuote(t *testing.T) {
	repo := new(MockRepository)
	repo.On("LogCompetitorQuote", mock.Anything, mock.Anything).Return(nil)
	e := testEngine(repo)

	t.Run("channel-scoped quote updates one record", func(t *testing.T) {
		e.ProcessQuote(context.Background(), model.CompetitorQuote{
			Feed: "amazon-uk", SKU: "NK-CC-35G", Channel: "Amazon UK", Price: 1.52,
		})

		records := e.Records()
		assert.Equal(t, 1.52, records[0].CompetitorPrice)
		assert.Equal(t, 1.59, records[1].CompetitorPrice)
	})

	t.Run("channel-less quote updates all listings of the sku", func(t *testing.T) {
		e.ProcessQuote(context.Background(), model.CompetitorQuote{
			Feed: "pricewatch", SKU: "NK-CC-35G", Price: 1.60,
		})

		records := e.Records()
		assert.Equal(t, 1.60, records[0].CompetitorPrice)
		assert.Equal(t, 1.60, records[1].CompetitorPrice)
		assert.Equal(t, 2.15, records[2].CompetitorPrice)
	})

	repo.AssertExpectations(t)
}

func TestEngine_Metrics(t *testing.T) {
	e := testEngine(new(MockRepository))

	all := e.Metrics("all", "all")
	assert.Len(t, all, 3)

	amazon := e.Metrics("Amazon UK", "")
	assert.Len(t, amazon, 2)
	assert.InDelta(t, 1.25, amazon[0].TotalCost, 1e-9)

	nakd := e.Metrics("", "Nakd")
	assert.Len(t, nakd, 2)
}

func TestEngine_ChannelSummaries(t *testing.T) {
	e := testEngine(new(MockRepository))

	summaries := e.ChannelSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Amazon UK", summaries[0].Channel)
	assert.Equal(t, 2, summaries[0].ProductCount)
	assert.Equal(t, "Shopify", summaries[1].Channel)
}

func TestEngine_Optimize_PersistsTopOpportunities(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveRecommendation", mock.Anything, mock.Anything).Return(nil).Times(2)
	e := testEngine(repo)

	results, err := e.Optimize(context.Background(), 25, "all")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// top_opportunities is 2, so exactly two recommendations are stored.
	repo.AssertExpectations(t)
}

func TestEngine_Optimize_InvalidTargetMargin(t *testing.T) {
	e := testEngine(new(MockRepository))

	_, err := e.Optimize(context.Background(), 100, "all")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestEngine_Warnings(t *testing.T) {
	records := testRecords()
	records[0].CompetitorPrice = 0
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	e := NewEngine(logger, new(MockRepository), testConfig(), records)

	require.Len(t, e.Warnings(), 1)
	assert.Contains(t, e.Warnings()[0], "competitor price missing")
}
