package engine

import (
	"context"
	"log/slog"
	"sync"

	"pricelens/internal/config"
	"pricelens/internal/database"
	"pricelens/internal/model"
	"pricelens/internal/pricing"
)

// Engine holds the record set and the logic for computing pricing analytics
// and price recommendations over it. Competitor feeds and the HTTP API touch
// it from separate goroutines, so the record state is mutex-guarded; the
// computations themselves are pure.
type Engine struct {
	logger *slog.Logger
	repo   database.Repository
	cfg    *config.Config

	mu           sync.RWMutex
	records      []model.ProductChannelRecord
	warnings     []string
	latestQuotes map[string]model.CompetitorQuote
}

// NewEngine creates a new instance of the Engine over a validated record
// set. Data-quality warnings are collected once up front.
func NewEngine(logger *slog.Logger, repo database.Repository, cfg *config.Config, records []model.ProductChannelRecord) *Engine {
	var warnings []string
	for _, r := range records {
		warnings = append(warnings, r.QualityWarnings()...)
	}
	return &Engine{
		logger:       logger,
		repo:         repo,
		cfg:          cfg,
		records:      records,
		warnings:     warnings,
		latestQuotes: make(map[string]model.CompetitorQuote),
	}
}

// ProcessQuote applies a competitor price update to the matching records and
// logs it for later analysis. Quotes without a channel apply to every
// channel listing of the SKU.
func (e *Engine) ProcessQuote(ctx context.Context, quote model.CompetitorQuote) {
	if err := e.repo.LogCompetitorQuote(ctx, quote); err != nil {
		e.logger.Error("failed to log competitor quote", "error", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.latestQuotes[quote.SKU+"@"+quote.Channel] = quote

	updated := 0
	for i := range e.records {
		if e.records[i].SKU != quote.SKU {
			continue
		}
		if quote.Channel != "" && e.records[i].Channel != quote.Channel {
			continue
		}
		e.records[i].CompetitorPrice = quote.Price
		updated++
	}
	if updated == 0 {
		e.logger.Warn("competitor quote matched no records",
			"feed", quote.Feed,
			"sku", quote.SKU,
			"channel", quote.Channel,
		)
		return
	}
	e.logger.Debug("competitor price updated",
		"sku", quote.SKU,
		"channel", quote.Channel,
		"price", quote.Price,
		"records", updated,
	)
}

// Records returns a copy of the current record set.
func (e *Engine) Records() []model.ProductChannelRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	records := make([]model.ProductChannelRecord, len(e.records))
	copy(records, e.records)
	return records
}

// Warnings returns the data-quality warnings collected from the record set.
func (e *Engine) Warnings() []string {
	return e.warnings
}

// Metrics computes per-record metrics for records matching the filters.
func (e *Engine) Metrics(channel, brand string) []model.Metrics {
	return pricing.ComputeAllMetrics(pricing.FilterRecords(e.Records(), channel, brand))
}

// ChannelSummaries computes the per-channel aggregates over all records.
func (e *Engine) ChannelSummaries() []model.ChannelSummary {
	return pricing.SummarizeByChannel(pricing.ComputeAllMetrics(e.Records()))
}

// Portfolio computes the portfolio aggregate for records matching the
// filters.
func (e *Engine) Portfolio(channel, brand string) model.PortfolioSummary {
	return pricing.SummarizePortfolio(e.Metrics(channel, brand))
}

// Optimize runs the price optimizer over the (filtered) record set, persists
// the top opportunities and logs the high-priority ones.
func (e *Engine) Optimize(ctx context.Context, targetMarginPct float64, channel string) ([]model.OptimizationResult, error) {
	records := pricing.FilterRecords(e.Records(), channel, "")
	results, err := pricing.OptimizeAll(records, targetMarginPct)
	if err != nil {
		return nil, err
	}

	top := pricing.TopN(results, e.cfg.Pricing.TopOpportunities, func(r model.OptimizationResult) float64 {
		return r.ProfitImpact
	})
	for _, res := range top {
		if res.PriorityRank >= 4 {
			e.logger.Info("high-priority pricing opportunity found",
				"sku", res.SKU,
				"channel", res.Channel,
				"currentPrice", res.SellingPrice,
				"recommendedPrice", res.RecommendedPrice,
				"profitImpact", res.ProfitImpact,
				"confidence", res.ConfidenceScore,
			)
		}
		if err := e.repo.SaveRecommendation(ctx, toStored(res)); err != nil {
			e.logger.Error("failed to save recommendation", "error", err)
		}
	}

	return results, nil
}

func toStored(res model.OptimizationResult) model.StoredRecommendation {
	return model.StoredRecommendation{
		SKU:              res.SKU,
		Channel:          res.Channel,
		TargetMarginPct:  res.TargetMarginPct,
		CurrentPrice:     res.SellingPrice,
		RecommendedPrice: res.RecommendedPrice,
		PriceChangePct:   res.PriceChangePct,
		RevenueImpact:    res.RevenueImpact,
		ProfitImpact:     res.ProfitImpact,
		ConfidenceScore:  res.ConfidenceScore,
		PriorityRank:     res.PriorityRank,
		Recommendation:   string(res.Recommendation),
	}
}
