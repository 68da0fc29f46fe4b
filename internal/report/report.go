package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"pricelens/internal/model"
)

var csvHeader = []string{
	"sku", "name", "brand", "channel", "volume", "price", "cost",
	"totalCost", "profitPerUnit", "marginPct", "totalRevenue",
	"totalProfit", "performanceScore",
}

// WriteCSV writes per-record metrics in the flat export schema.
func WriteCSV(w io.Writer, metrics []model.Metrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range metrics {
		row := []string{
			m.SKU,
			m.Name,
			m.Brand,
			m.Channel,
			strconv.Itoa(m.Volume),
			money(m.SellingPrice),
			money(m.CostPrice),
			money(m.TotalCost),
			money(m.GrossProfitPerUnit),
			pct(m.ProfitMarginPct),
			money(m.TotalRevenue),
			money(m.TotalProfit),
			pct(m.PerformanceScore),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", m.SKU, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// BuildWorkbook assembles a three-sheet Excel report: per-product metrics,
// channel summaries and the optimizer's recommendations. The caller owns the
// returned file and must Close it.
func BuildWorkbook(metrics []model.Metrics, channels []model.ChannelSummary, results []model.OptimizationResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeProductsSheet(f, metrics); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeChannelsSheet(f, channels); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeOpportunitiesSheet(f, results); err != nil {
		f.Close()
		return nil, err
	}

	// The default sheet is replaced by our own.
	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeProductsSheet(f *excelize.File, metrics []model.Metrics) error {
	const sheet = "Products"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	headers := []string{
		"SKU", "Name", "Brand", "Channel", "Volume", "Price", "Total Cost",
		"Profit/Unit", "Margin %", "Markup %", "Revenue", "Profit",
		"Contribution %", "Performance",
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for row, m := range metrics {
		values := []interface{}{
			m.SKU, m.Name, m.Brand, m.Channel, m.Volume, m.SellingPrice,
			m.TotalCost, m.GrossProfitPerUnit, m.ProfitMarginPct, m.MarkupPct,
			m.TotalRevenue, m.TotalProfit, m.ContributionMarginPct, m.PerformanceScore,
		}
		if err := writeRow(f, sheet, row+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeChannelsSheet(f *excelize.File, channels []model.ChannelSummary) error {
	const sheet = "Channels"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	headers := []string{
		"Channel", "Products", "Volume", "Revenue", "Profit",
		"Avg Margin %", "Avg Performance",
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for row, c := range channels {
		values := []interface{}{
			c.Channel, c.ProductCount, c.TotalVolume, c.TotalRevenue,
			c.TotalProfit, c.AvgMarginPct, c.AvgPerformanceScore,
		}
		if err := writeRow(f, sheet, row+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeOpportunitiesSheet(f *excelize.File, results []model.OptimizationResult) error {
	const sheet = "Opportunities"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	headers := []string{
		"SKU", "Channel", "Current Price", "Recommended Price", "Change %",
		"Projected Volume", "Revenue Impact", "Profit Impact",
		"Confidence", "Priority", "Recommendation",
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for row, r := range results {
		values := []interface{}{
			r.SKU, r.Channel, r.SellingPrice, r.RecommendedPrice, r.PriceChangePct,
			r.ProjectedVolume, r.RevenueImpact, r.ProfitImpact,
			r.ConfidenceScore, r.PriorityRank, string(r.Recommendation),
		}
		if err := writeRow(f, sheet, row+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header on %s: %w", sheet, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
		}
	}
	return nil
}
