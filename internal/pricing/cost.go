package pricing

import "pricelens/internal/model"

// Policy constants for the analytics engine. Keeping them named (instead of
// inline in the arithmetic) so pricing policy changes are auditable.
const (
	// Performance score sub-score caps. They sum to 100.
	volumeScoreCap  = 30.0
	marginScoreCap  = 40.0
	revenueScoreCap = 30.0

	// Normalization bases: a record earns the full sub-score at this
	// volume / margin / revenue.
	volumeScoreBasis  = 5000.0
	marginScoreBasis  = 50.0
	revenueScoreBasis = 50000.0

	// Strategy weights for the combined price recommendation. Margin
	// target is the dominant signal.
	weightMarginTarget = 0.4
	weightCompetitor   = 0.3
	weightElasticity   = 0.3

	// Competitor strategy undercuts the competitor price by 3%.
	competitorUndercut = 0.97

	// Elasticity strategy multipliers. Elastic demand (elasticity below
	// the threshold) gets the conservative one.
	elasticMultiplier   = 0.95
	inelasticMultiplier = 1.05
	elasticityThreshold = -1.0
)

// TotalCost returns the landed cost per unit: product cost plus packaging,
// shipping and channel fee. Absent components are zero-valued on the record
// already; negative components are accepted and simply reduce the total.
func TotalCost(r model.ProductChannelRecord) float64 {
	return r.CostPrice + r.PackagingCost + r.ShippingCost + r.ChannelFee
}
