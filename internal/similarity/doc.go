// Package similarity groups companies whose values for the same metric are
// close to each other within a relative tolerance.
//
// # Relation
//
// Two companies a and b are similar for metric m when
//
//	|v_a - v_b| / max(|v_a|, |v_b|, Epsilon) <= threshold
//
// The relation is symmetric and irreflexive and is decided per metric from
// direct pairwise comparisons only: it is not transitive, so a~b and b~c
// does not make a~c. Companies without a present value for a metric get an
// empty set for that metric and take part in no comparison.
//
// The normalizer uses magnitudes, so a large positive and a large negative
// value of similar magnitude are far apart (relative difference close to 2)
// but a threshold of 2 or more makes them similar. Options.SignAware turns
// any sign mismatch into dissimilarity instead.
//
// # Ordering
//
// Each similarity set lists companies in the row order of the input table.
// The order is identical for every strategy and every call.
//
// # Complexity
//
// StrategyPairwise compares every pair of rows per metric: O(R² × M) for R
// rows and M metrics. StrategySorted sorts each column and stops scanning a
// row's neighbours as soon as no further value can be within the
// threshold, which is close to O(M × R log R) for selective thresholds but
// degrades to the pairwise bound for thresholds of 1 or more. Either way
// the engine targets tables of a few thousand rows; callers are expected
// to bound table size.
//
// # Usage
//
//	idx, err := similarity.Compute(table, 0.1)
//	if err != nil {
//	    return err
//	}
//	peers := idx.Similar("CBA", "Revenue")
package similarity
