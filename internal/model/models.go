package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks records or parameters the engine must refuse to
// compute on, because the downstream ratios would be undefined.
var ErrInvalidInput = errors.New("invalid input")

// ProductChannelRecord is one product listed on one sales channel, with the
// commercial inputs the analytics engine works from. Optional cost fields
// default to zero; CompetitorPrice <= 0 means the competitor price is
// unknown.
type ProductChannelRecord struct {
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Channel string `json:"channel"`

	CostPrice     float64 `json:"costPrice"`
	PackagingCost float64 `json:"packagingCost"`
	ShippingCost  float64 `json:"shippingCost"`
	ChannelFee    float64 `json:"channelFee"`

	SellingPrice     float64 `json:"sellingPrice"`
	Volume           int     `json:"volume"`
	CompetitorPrice  float64 `json:"competitorPrice"`
	DemandElasticity float64 `json:"demandElasticity"`
}

// Key identifies the record within a batch (one product can be listed on
// several channels).
func (r ProductChannelRecord) Key() string {
	return r.SKU + "@" + r.Channel
}

// HasCompetitorPrice reports whether a usable competitor price is present.
func (r ProductChannelRecord) HasCompetitorPrice() bool {
	return r.CompetitorPrice > 0
}

// Validate rejects records the engine cannot compute sensible results for.
func (r ProductChannelRecord) Validate() error {
	if r.SellingPrice <= 0 {
		return fmt.Errorf("%w: record %s: selling price must be > 0, got %.2f", ErrInvalidInput, r.Key(), r.SellingPrice)
	}
	if r.Volume < 0 {
		return fmt.Errorf("%w: record %s: volume must be >= 0, got %d", ErrInvalidInput, r.Key(), r.Volume)
	}
	return nil
}

// QualityWarnings lists non-fatal data-quality issues. The record is still
// computable; callers should surface these next to the results.
func (r ProductChannelRecord) QualityWarnings() []string {
	var warns []string
	if r.CostPrice == 0 {
		warns = append(warns, fmt.Sprintf("record %s: cost price is zero, margin will be overstated", r.Key()))
	}
	if !r.HasCompetitorPrice() {
		warns = append(warns, fmt.Sprintf("record %s: competitor price missing, competitor strategy degrades to current price", r.Key()))
	}
	if r.DemandElasticity == 0 {
		warns = append(warns, fmt.Sprintf("record %s: demand elasticity is zero, volume projection will be flat", r.Key()))
	}
	return warns
}

// Metrics holds the derived profitability and performance figures for one
// product-channel record. ProfitMarginPct includes packaging, shipping and
// channel fee; ContributionMarginPct deliberately excludes them and measures
// the product-only margin. Both definitions coexist on purpose.
type Metrics struct {
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Channel string `json:"channel"`

	SellingPrice          float64 `json:"sellingPrice"`
	Volume                int     `json:"volume"`
	CostPrice             float64 `json:"costPrice"`
	TotalCost             float64 `json:"totalCost"`
	GrossProfitPerUnit    float64 `json:"grossProfitPerUnit"`
	ProfitMarginPct       float64 `json:"profitMarginPct"`
	MarkupPct             float64 `json:"markupPct"`
	ROIPct                float64 `json:"roiPct"`
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalProfit           float64 `json:"totalProfit"`
	ContributionMarginPct float64 `json:"contributionMarginPct"`
	PerformanceScore      float64 `json:"performanceScore"`
}

// Recommendation is the action class derived from the recommended price
// change.
type Recommendation string

const (
	RecommendationSignificantIncrease Recommendation = "significant_increase"
	RecommendationModerateIncrease    Recommendation = "moderate_increase"
	RecommendationMinorAdjustment     Recommendation = "minor_adjustment"
	RecommendationOptimal             Recommendation = "optimal"
	RecommendationConsiderDecrease    Recommendation = "consider_decrease"
	RecommendationDecreaseNeeded      Recommendation = "decrease_needed"
)

// OptimizationResult extends Metrics with the optimizer's recommendation
// for one record at a given target margin. ConfidenceScore is a 0-100
// heuristic, not a statistical confidence interval.
type OptimizationResult struct {
	Metrics

	TargetMarginPct  float64        `json:"targetMarginPct"`
	RecommendedPrice float64        `json:"recommendedPrice"`
	PriceChange      float64        `json:"priceChange"`
	PriceChangePct   float64        `json:"priceChangePct"`
	ProjectedVolume  float64        `json:"projectedVolume"`
	VolumeChangePct  float64        `json:"volumeChangePct"`
	ProjectedRevenue float64        `json:"projectedRevenue"`
	ProjectedProfit  float64        `json:"projectedProfit"`
	ProjectedMargin  float64        `json:"projectedMargin"`
	RevenueImpact    float64        `json:"revenueImpact"`
	ProfitImpact     float64        `json:"profitImpact"`
	ConfidenceScore  float64        `json:"confidenceScore"`
	PriorityRank     int            `json:"priorityRank"`
	Recommendation   Recommendation `json:"recommendation"`
}

// ChannelSummary aggregates metrics over all products of one channel.
type ChannelSummary struct {
	Channel             string  `json:"channel"`
	ProductCount        int     `json:"productCount"`
	TotalVolume         int     `json:"totalVolume"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalProfit         float64 `json:"totalProfit"`
	AvgMarginPct        float64 `json:"avgMarginPct"`
	AvgPerformanceScore float64 `json:"avgPerformanceScore"`
}

// PortfolioSummary aggregates metrics over the whole (filtered) record set.
type PortfolioSummary struct {
	ProductCount        int     `json:"productCount"`
	TotalVolume         int     `json:"totalVolume"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalProfit         float64 `json:"totalProfit"`
	AvgMarginPct        float64 `json:"avgMarginPct"`
	AvgPerformanceScore float64 `json:"avgPerformanceScore"`
}

// CompetitorQuote is a single competitor price update from a channel feed.
type CompetitorQuote struct {
	Feed    string
	SKU     string
	Channel string
	Price   float64
}

// StoredRecommendation is a persisted optimizer recommendation.
type StoredRecommendation struct {
	ID               int64     `db:"id"`
	Timestamp        time.Time `db:"timestamp"`
	SKU              string    `db:"sku"`
	Channel          string    `db:"channel"`
	TargetMarginPct  float64   `db:"target_margin_pct"`
	CurrentPrice     float64   `db:"current_price"`
	RecommendedPrice float64   `db:"recommended_price"`
	PriceChangePct   float64   `db:"price_change_pct"`
	RevenueImpact    float64   `db:"revenue_impact"`
	ProfitImpact     float64   `db:"profit_impact"`
	ConfidenceScore  float64   `db:"confidence_score"`
	PriorityRank     int       `db:"priority_rank"`
	Recommendation   string    `db:"recommendation"`
}
