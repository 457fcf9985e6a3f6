package domain

import (
	"encoding/json"
	"sort"
)

// UnavailableMarker is the JSON rendering of a benchmark that could not be
// resolved.
const UnavailableMarker = "unavailable"

// SectorAverages maps a sector label to the sector's mean value per metric.
type SectorAverages map[string]map[string]float64

// Sectors returns the sector labels in sorted order.
func (a SectorAverages) Sectors() []string {
	out := make([]string, 0, len(a))
	for s := range a {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SectorMembership maps a company identifier to its sector label.
type SectorMembership map[string]string

// BenchmarkValue is either a sector mean or the unavailable marker.
type BenchmarkValue struct {
	Value     float64
	Available bool
}

// Available wraps a resolved sector mean.
func Available(v float64) BenchmarkValue {
	return BenchmarkValue{Value: v, Available: true}
}

// Unavailable is the benchmark returned when no sector mean applies.
func Unavailable() BenchmarkValue {
	return BenchmarkValue{}
}

// MarshalJSON renders the mean as a number or the "unavailable" string.
func (b BenchmarkValue) MarshalJSON() ([]byte, error) {
	if !b.Available {
		return json.Marshal(UnavailableMarker)
	}
	return json.Marshal(b.Value)
}

// UnmarshalJSON accepts a number or the "unavailable" string.
func (b *BenchmarkValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Unavailable()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*b = Available(f)
	return nil
}

// BenchmarkResult maps metric name to the company's sector benchmark.
type BenchmarkResult map[string]BenchmarkValue
