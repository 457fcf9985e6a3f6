package domain

// SimilarityIndex maps (company, metric) to the ordered list of other
// companies considered similar for that metric. An index is computed per
// query from one table and one threshold and is never persisted.
type SimilarityIndex map[string]map[string][]string

// Similar returns the companies similar to company under metric. Unknown
// companies or metrics yield nil.
func (idx SimilarityIndex) Similar(company, metric string) []string {
	byMetric, ok := idx[NormalizeCompany(company)]
	if !ok {
		return nil
	}
	return byMetric[metric]
}

// Contains reports whether other is listed as similar to company for metric.
func (idx SimilarityIndex) Contains(company, metric, other string) bool {
	other = NormalizeCompany(other)
	for _, c := range idx.Similar(company, metric) {
		if c == other {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of idx. Empty peer lists stay empty and non-nil.
func (idx SimilarityIndex) Clone() SimilarityIndex {
	if idx == nil {
		return nil
	}
	out := make(SimilarityIndex, len(idx))
	for company, byMetric := range idx {
		metrics := make(map[string][]string, len(byMetric))
		for metric, peers := range byMetric {
			metrics[metric] = append(make([]string, 0, len(peers)), peers...)
		}
		out[company] = metrics
	}
	return out
}
