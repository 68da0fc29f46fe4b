package pricing

import "pricelens/internal/model"

// ComputeMetrics derives the profitability and performance metrics for one
// record. Every ratio with a potentially-zero denominator resolves to 0
// instead of propagating NaN or Inf.
func ComputeMetrics(r model.ProductChannelRecord) model.Metrics {
	totalCost := TotalCost(r)
	grossProfit := r.SellingPrice - totalCost

	var profitMarginPct, contributionMarginPct float64
	if r.SellingPrice > 0 {
		profitMarginPct = grossProfit / r.SellingPrice * 100
		contributionMarginPct = (r.SellingPrice - r.CostPrice) / r.SellingPrice * 100
	}

	var markupPct float64
	if totalCost > 0 {
		markupPct = grossProfit / totalCost * 100
	}

	totalRevenue := r.SellingPrice * float64(r.Volume)
	totalProfit := grossProfit * float64(r.Volume)

	return model.Metrics{
		SKU:                   r.SKU,
		Name:                  r.Name,
		Brand:                 r.Brand,
		Channel:               r.Channel,
		SellingPrice:          r.SellingPrice,
		Volume:                r.Volume,
		CostPrice:             r.CostPrice,
		TotalCost:             totalCost,
		GrossProfitPerUnit:    grossProfit,
		ProfitMarginPct:       profitMarginPct,
		MarkupPct:             markupPct,
		ROIPct:                markupPct,
		TotalRevenue:          totalRevenue,
		TotalProfit:           totalProfit,
		ContributionMarginPct: contributionMarginPct,
		PerformanceScore:      performanceScore(r.Volume, profitMarginPct, totalRevenue),
	}
}

// ComputeAllMetrics maps ComputeMetrics over a record set, preserving input
// order. Records are independent; the result for one never depends on
// another.
func ComputeAllMetrics(records []model.ProductChannelRecord) []model.Metrics {
	metrics := make([]model.Metrics, len(records))
	for i, r := range records {
		metrics[i] = ComputeMetrics(r)
	}
	return metrics
}

// performanceScore combines normalized volume, margin and revenue signals
// into a composite score. Each sub-score is capped, so the total never
// exceeds 100. The margin sub-score may go negative for loss-making records;
// that penalty is intentional.
func performanceScore(volume int, profitMarginPct, totalRevenue float64) float64 {
	return volumeScore(volume) + marginScore(profitMarginPct) + revenueScore(totalRevenue)
}

func volumeScore(volume int) float64 {
	return capAt(float64(volume)/volumeScoreBasis*volumeScoreCap, volumeScoreCap)
}

func marginScore(profitMarginPct float64) float64 {
	return capAt(profitMarginPct/marginScoreBasis*marginScoreCap, marginScoreCap)
}

func revenueScore(totalRevenue float64) float64 {
	return capAt(totalRevenue/revenueScoreBasis*revenueScoreCap, revenueScoreCap)
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
