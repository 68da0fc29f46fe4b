package pricing

import (
	"fmt"
	"math"

	"pricelens/internal/model"
)

// Optimize computes a price recommendation for one record. It combines three
// weighted strategies (margin target, competitor undercut, demand
// elasticity), projects the volume/revenue/profit impact of the recommended
// price via point elasticity, and derives a confidence score and priority
// rank. The function is pure: identical inputs yield identical output.
func Optimize(r model.ProductChannelRecord, targetMarginPct float64) (model.OptimizationResult, error) {
	if err := r.Validate(); err != nil {
		return model.OptimizationResult{}, err
	}
	if targetMarginPct >= 100 || targetMarginPct < 0 {
		return model.OptimizationResult{}, fmt.Errorf("%w: target margin must be in [0, 100), got %v", model.ErrInvalidInput, targetMarginPct)
	}

	m := ComputeMetrics(r)

	// Strategy A: the price at which the landed cost yields exactly the
	// target margin.
	marginBasedPrice := m.TotalCost / (1 - targetMarginPct/100)

	// Strategy B: undercut the competitor. Without a competitor price the
	// strategy contributes the current price, i.e. neutrally.
	competitorBasedPrice := r.SellingPrice
	if r.HasCompetitorPrice() {
		competitorBasedPrice = r.CompetitorPrice * competitorUndercut
	}

	// Strategy C: nudge the current price, conservatively when demand is
	// elastic.
	elasticityBasedPrice := r.SellingPrice * inelasticMultiplier
	if r.DemandElasticity < elasticityThreshold {
		elasticityBasedPrice = r.SellingPrice * elasticMultiplier
	}

	recommendedPrice := weightMarginTarget*marginBasedPrice +
		weightCompetitor*competitorBasedPrice +
		weightElasticity*elasticityBasedPrice

	priceChange := recommendedPrice - r.SellingPrice
	priceChangePct := priceChange / r.SellingPrice * 100

	// Point elasticity: %dQ = %dP * elasticity. Volume cannot go negative.
	volumeChangePct := priceChangePct * r.DemandElasticity
	projectedVolume := math.Max(0, float64(r.Volume)*(1+volumeChangePct/100))

	projectedRevenue := recommendedPrice * projectedVolume
	projectedProfit := (recommendedPrice - m.TotalCost) * projectedVolume
	var projectedMargin float64
	if recommendedPrice > 0 {
		projectedMargin = (recommendedPrice - m.TotalCost) / recommendedPrice * 100
	}

	revenueImpact := projectedRevenue - m.TotalRevenue
	profitImpact := projectedProfit - m.TotalProfit

	return model.OptimizationResult{
		Metrics:          m,
		TargetMarginPct:  targetMarginPct,
		RecommendedPrice: recommendedPrice,
		PriceChange:      priceChange,
		PriceChangePct:   priceChangePct,
		ProjectedVolume:  projectedVolume,
		VolumeChangePct:  volumeChangePct,
		ProjectedRevenue: projectedRevenue,
		ProjectedProfit:  projectedProfit,
		ProjectedMargin:  projectedMargin,
		RevenueImpact:    revenueImpact,
		ProfitImpact:     profitImpact,
		ConfidenceScore:  confidenceScore(r, m.ProfitMarginPct, targetMarginPct),
		PriorityRank:     priorityRank(profitImpact, m.TotalProfit),
		Recommendation:   recommendationFor(priceChangePct),
	}, nil
}

// OptimizeAll runs Optimize over a record set, preserving input order. The
// batch fails on the first invalid record; callers that want skip-and-report
// semantics validate during loading instead.
func OptimizeAll(records []model.ProductChannelRecord, targetMarginPct float64) ([]model.OptimizationResult, error) {
	results := make([]model.OptimizationResult, 0, len(records))
	for _, r := range records {
		res, err := Optimize(r, targetMarginPct)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// confidenceScore is a 0-100 heuristic, not a statistical confidence
// interval: it trusts the recommendation more when the current margin is
// close to the target, the price is close to the competitor's, and the
// elasticity signal is strong. Without a competitor price the gap term is 0.
func confidenceScore(r model.ProductChannelRecord, currentMarginPct, targetMarginPct float64) float64 {
	marginGap := math.Abs(currentMarginPct - targetMarginPct)

	var competitorGap float64
	if r.HasCompetitorPrice() {
		competitorGap = math.Abs(r.SellingPrice-r.CompetitorPrice) / r.CompetitorPrice
	}

	elasticityConfidence := 60.0
	if math.Abs(r.DemandElasticity) > 1 {
		elasticityConfidence = 80.0
	}

	score := 100 - 2*marginGap - 50*competitorGap + (elasticityConfidence - 50)
	return math.Min(100, math.Max(0, score))
}

// priorityRank maps the relative profit impact to an action priority from 1
// (hold off) to 5 (act now). Branches are evaluated in this fixed order;
// zero current profit counts as zero impact and lands on the default.
func priorityRank(profitImpact, currentProfit float64) int {
	var impactPct float64
	if currentProfit != 0 {
		impactPct = profitImpact / currentProfit * 100
	}
	switch {
	case impactPct > 15:
		return 5
	case impactPct > 10:
		return 4
	case impactPct > 5:
		return 4
	case impactPct < -10:
		return 1
	case impactPct < -5:
		return 2
	default:
		return 3
	}
}

func recommendationFor(priceChangePct float64) model.Recommendation {
	switch {
	case priceChangePct > 10:
		return model.RecommendationSignificantIncrease
	case priceChangePct > 5:
		return model.RecommendationModerateIncrease
	case priceChangePct > 1:
		return model.RecommendationMinorAdjustment
	case priceChangePct > -1:
		return model.RecommendationOptimal
	case priceChangePct > -5:
		return model.RecommendationConsiderDecrease
	default:
		return model.RecommendationDecreaseNeeded
	}
}
