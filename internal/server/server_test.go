package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/engine"
	"pricelens/internal/model"
)

// stubRepository satisfies database.Repository without a database.
type stubRepository struct {
	saved []model.StoredRecommendation
}

func (s *stubRepository) SaveRecommendation(_ context.Context, rec model.StoredRecommendation) error {
	s.saved = append(s.saved, rec)
	return nil
}

func (s *stubRepository) LogCompetitorQuote(context.Context, model.CompetitorQuote) error {
	return nil
}

func (s *stubRepository) Migrate(context.Context) error { return nil }

func testServer(t *testing.T) (*Server, *stubRepository) {
	t.Helper()
	records := []model.ProductChannelRecord{
		{
			SKU: "NK-CC-35G", Name: "Nakd Cashew Cookie Bar 35g", Brand: "Nakd", Channel: "Amazon UK",
			CostPrice: 0.85, PackagingCost: 0.05, ShippingCost: 0.15, ChannelFee: 0.20,
			SellingPrice: 1.35, Volume: 2500, CompetitorPrice: 1.45, DemandElasticity: -1.2,
		},
		{
			SKU: "GR-VB-50G", Name: "Graze Vanilla Bliss 50g", Brand: "Graze", Channel: "Shopify",
			CostPrice: 1.20, PackagingCost: 0.06, ShippingCost: 0.45, ChannelFee: 0.09,
			SellingPrice: 2.19, Volume: 1200, CompetitorPrice: 2.29, DemandElasticity: -1.6,
		},
	}
	cfg := &config.Config{
		Pricing: config.PricingConfig{DefaultTargetMarginPct: 25, TopOpportunities: 3},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	repo := &stubRepository{}
	eng := engine.NewEngine(logger, repo, cfg, records)
	skipped := []catalog.SkippedRecord{
		{Record: model.ProductChannelRecord{SKU: "BAD-1", Channel: "eBay"}, Reason: "selling price must be > 0"},
	}
	return New(logger, cfg, eng, skipped), repo
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)
	rec := get(t, srv.Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProducts(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/products")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Products []model.Metrics         `json:"products"`
		Excluded []catalog.SkippedRecord `json:"excluded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Products, 2)
	assert.InDelta(t, 1.25, payload.Products[0].TotalCost, 1e-9)

	// Records rejected at load time stay visible to API consumers.
	require.Len(t, payload.Excluded, 1)
	assert.Equal(t, "BAD-1", payload.Excluded[0].Record.SKU)
}

func TestProducts_ChannelFilter(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/products?channel=Shopify")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Products []model.Metrics `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Products, 1)
	assert.Equal(t, "GR-VB-50G", payload.Products[0].SKU)
}

func TestChannels(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/channels")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Channels []model.ChannelSummary `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Channels, 2)
	assert.Equal(t, "Amazon UK", payload.Channels[0].Channel)
}

func TestPortfolio(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/portfolio")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload model.PortfolioSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.ProductCount)
	assert.Equal(t, 3700, payload.TotalVolume)
}

func TestOptimizations(t *testing.T) {
	srv, repo := testServer(t)

	rec := get(t, srv.Router(), "/api/optimizations?target_margin=25")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		TargetMarginPct float64                    `json:"targetMarginPct"`
		Results         []model.OptimizationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 25.0, payload.TargetMarginPct)
	require.Len(t, payload.Results, 2)

	// The engine persists its top opportunities as a side effect.
	assert.NotEmpty(t, repo.saved)
}

func TestOptimizations_DefaultTargetMargin(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/optimizations")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		TargetMarginPct float64 `json:"targetMarginPct"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 25.0, payload.TargetMarginPct)
}

func TestOptimizations_BadParams(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.Router()

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/optimizations?target_margin=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/optimizations?target_margin=100").Code)
}

func TestOpportunities(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/opportunities?n=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Opportunities []model.OptimizationResult `json:"opportunities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Opportunities, 1)
}

func TestExportCSV(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/export/csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "NK-CC-35G")
}

func TestExportXLSX(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv.Router(), "/api/export/xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}
