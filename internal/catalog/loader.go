package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pricelens/internal/model"
)

// SkippedRecord is a record rejected during loading, kept so callers can
// report exactly which inputs were excluded from the aggregates and why.
type SkippedRecord struct {
	Record model.ProductChannelRecord `json:"record"`
	Reason string                     `json:"reason"`
}

// LoadResult separates computable records from rejected ones.
type LoadResult struct {
	Records []model.ProductChannelRecord
	Skipped []SkippedRecord
}

// LoadFile reads product-channel records from a JSON file.
func LoadFile(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a JSON array of product-channel records. Records that fail
// validation are skipped and reported rather than failing the batch, so one
// bad row never hides the rest of the catalog.
func Load(r io.Reader) (LoadResult, error) {
	var raw []model.ProductChannelRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return LoadResult{}, fmt.Errorf("decode catalog: %w", err)
	}

	result := LoadResult{Records: make([]model.ProductChannelRecord, 0, len(raw))}
	for _, rec := range raw {
		if err := rec.Validate(); err != nil {
			result.Skipped = append(result.Skipped, SkippedRecord{Record: rec, Reason: err.Error()})
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}
