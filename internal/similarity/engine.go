package similarity

import (
	"math"
	"sort"

	"companylens/pkg/contracts/domain"
)

// Epsilon guards the relative difference against division by zero when
// both values are zero or vanishingly small.
const Epsilon = 1e-12

// SortedStrategyMinRows is the table size from which StrategyAuto switches
// from pairwise comparison to the sorted scan.
const SortedStrategyMinRows = 64

// earlyStopSlack widens the early-stop test of the sorted scan so that
// rounding in the relative difference never ends a scan before a
// qualifying neighbour.
const earlyStopSlack = 1e-9

// Strategy selects how candidate pairs are enumerated.
type Strategy int

const (
	// StrategyAuto picks StrategyPairwise for small tables and
	// StrategySorted otherwise.
	StrategyAuto Strategy = iota
	// StrategyPairwise compares every unordered pair of rows.
	StrategyPairwise
	// StrategySorted sorts each metric column and scans neighbours in
	// value order, stopping early when the threshold allows it.
	StrategySorted
)

// String returns the strategy name
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyPairwise:
		return "pairwise"
	case StrategySorted:
		return "sorted"
	default:
		return "unknown"
	}
}

// Options configures a similarity computation.
type Options struct {
	// SignAware makes values of opposite sign dissimilar regardless of
	// threshold. Zero is compatible with either sign.
	SignAware bool
	// Strategy selects pair enumeration. Output never depends on it.
	Strategy Strategy
}

// DefaultOptions returns the magnitude-only relation with automatic
// strategy selection.
func DefaultOptions() Options {
	return Options{SignAware: false, Strategy: StrategyAuto}
}

// RelativeDifference returns |a-b| / max(|a|, |b|, Epsilon). Equal values,
// including two zeros, have a difference of 0.
func RelativeDifference(a, b float64) float64 {
	if a == b {
		return 0
	}
	denom := math.Max(math.Max(math.Abs(a), math.Abs(b)), Epsilon)
	return math.Abs(a-b) / denom
}

// Compute builds the similarity index of table under threshold using
// DefaultOptions.
func Compute(table *domain.MetricTable, threshold float64) (domain.SimilarityIndex, error) {
	return ComputeWithOptions(table, threshold, DefaultOptions())
}

// ComputeWithOptions builds the similarity index of table under threshold.
// It fails only when the table is empty or the threshold is negative;
// absent values are excluded from comparison and never raise errors.
func ComputeWithOptions(table *domain.MetricTable, threshold float64, opts Options) (domain.SimilarityIndex, error) {
	if table.Len() == 0 {
		return nil, emptyTableError()
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, thresholdError(threshold)
	}

	strategy := opts.Strategy
	if strategy == StrategyAuto {
		strategy = StrategyPairwise
		if table.Len() >= SortedStrategyMinRows {
			strategy = StrategySorted
		}
	}

	idx := make(domain.SimilarityIndex, table.Len())
	for _, row := range table.Rows {
		idx[row.Company] = make(map[string][]string, len(table.Metrics))
	}

	for _, metric := range table.Metrics {
		column := collect(table, metric)

		var neighbours [][]int
		switch strategy {
		case StrategySorted:
			neighbours = sortedNeighbours(column, table.Len(), threshold, opts.SignAware)
		default:
			neighbours = pairwiseNeighbours(column, table.Len(), threshold, opts.SignAware)
		}

		for pos, row := range table.Rows {
			peers := make([]string, len(neighbours[pos]))
			for k, other := range neighbours[pos] {
				peers[k] = table.Rows[other].Company
			}
			idx[row.Company][metric] = peers
		}
	}

	return idx, nil
}

// entry is one present value of a metric column.
type entry struct {
	pos   int
	value float64
}

func collect(table *domain.MetricTable, metric string) []entry {
	column := make([]entry, 0, table.Len())
	for pos, row := range table.Rows {
		if v, ok := row.Value(metric).Get(); ok {
			column = append(column, entry{pos: pos, value: v})
		}
	}
	return column
}

func similar(a, b, threshold float64, signAware bool) bool {
	if signAware && oppositeSigns(a, b) {
		return false
	}
	return RelativeDifference(a, b) <= threshold
}

func oppositeSigns(a, b float64) bool {
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}

// pairwiseNeighbours compares every pair in row order. Because rows are
// visited in ascending position, each neighbour list comes out sorted.
func pairwiseNeighbours(column []entry, rows int, threshold float64, signAware bool) [][]int {
	neighbours := make([][]int, rows)
	for i := 0; i < len(column); i++ {
		for j := i + 1; j < len(column); j++ {
			a, b := column[i], column[j]
			if similar(a.value, b.value, threshold, signAware) {
				neighbours[a.pos] = append(neighbours[a.pos], b.pos)
				neighbours[b.pos] = append(neighbours[b.pos], a.pos)
			}
		}
	}
	return neighbours
}

// sortedNeighbours scans each value's larger neighbours in ascending order.
// For a fixed lower value the relative difference grows with the upper
// value, except past the sign change where it falls back towards 1; below
// a threshold of 1 that tail can never qualify, so the scan may stop at the
// first neighbour that is clearly out of range.
func sortedNeighbours(column []entry, rows int, threshold float64, signAware bool) [][]int {
	sorted := make([]entry, len(column))
	copy(sorted, column)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].value < sorted[j].value
	})

	canStop := threshold < 1
	stopAt := threshold*(1+earlyStopSlack) + earlyStopSlack

	neighbours := make([][]int, rows)
	for i := 0; i < len(sorted); i++ {
		a := sorted[i]
		for j := i + 1; j < len(sorted); j++ {
			b := sorted[j]
			if signAware && oppositeSigns(a.value, b.value) {
				// Every remaining value is positive while a is negative.
				break
			}
			d := RelativeDifference(a.value, b.value)
			if d <= threshold {
				neighbours[a.pos] = append(neighbours[a.pos], b.pos)
				neighbours[b.pos] = append(neighbours[b.pos], a.pos)
				continue
			}
			if canStop && d > stopAt {
				break
			}
		}
	}

	for _, n := range neighbours {
		sort.Ints(n)
	}
	return neighbours
}
