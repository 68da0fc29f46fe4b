package pricing

import (
	"sort"

	"pricelens/internal/model"
)

// FilterWildcard matches every channel or brand.
const FilterWildcard = "all"

// FilterRecords keeps records matching the channel and brand filters. An
// empty filter or FilterWildcard matches everything.
func FilterRecords(records []model.ProductChannelRecord, channel, brand string) []model.ProductChannelRecord {
	filtered := make([]model.ProductChannelRecord, 0, len(records))
	for _, r := range records {
		if matches(r.Channel, channel) && matches(r.Brand, brand) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func matches(value, filter string) bool {
	return filter == "" || filter == FilterWildcard || value == filter
}

// SummarizeByChannel folds per-record metrics into one summary per channel,
// in order of first appearance. Empty input yields an empty slice.
func SummarizeByChannel(metrics []model.Metrics) []model.ChannelSummary {
	order := make([]string, 0)
	byChannel := make(map[string][]model.Metrics)
	for _, m := range metrics {
		if _, seen := byChannel[m.Channel]; !seen {
			order = append(order, m.Channel)
		}
		byChannel[m.Channel] = append(byChannel[m.Channel], m)
	}

	summaries := make([]model.ChannelSummary, 0, len(order))
	for _, channel := range order {
		group := byChannel[channel]
		s := model.ChannelSummary{Channel: channel, ProductCount: len(group)}
		for _, m := range group {
			s.TotalVolume += m.Volume
			s.TotalRevenue += m.TotalRevenue
			s.TotalProfit += m.TotalProfit
			s.AvgMarginPct += m.ProfitMarginPct
			s.AvgPerformanceScore += m.PerformanceScore
		}
		s.AvgMarginPct /= float64(len(group))
		s.AvgPerformanceScore /= float64(len(group))
		summaries = append(summaries, s)
	}
	return summaries
}

// SummarizePortfolio folds per-record metrics into a single aggregate.
// Empty input yields all-zero aggregates, not an error.
func SummarizePortfolio(metrics []model.Metrics) model.PortfolioSummary {
	s := model.PortfolioSummary{ProductCount: len(metrics)}
	if len(metrics) == 0 {
		return s
	}
	for _, m := range metrics {
		s.TotalVolume += m.Volume
		s.TotalRevenue += m.TotalRevenue
		s.TotalProfit += m.TotalProfit
		s.AvgMarginPct += m.ProfitMarginPct
		s.AvgPerformanceScore += m.PerformanceScore
	}
	s.AvgMarginPct /= float64(len(metrics))
	s.AvgPerformanceScore /= float64(len(metrics))
	return s
}

// TopN returns the n items with the highest score, descending. The sort is
// stable, so ties keep their original input order. n larger than the input
// returns everything.
func TopN[T any](items []T, n int, score func(T) float64) []T {
	ranked := make([]T, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
