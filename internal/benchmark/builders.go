package benchmark

import (
	"companylens/pkg/contracts/domain"
)

// MembershipFromTable pairs each company with its sector column. Rows
// without a sector label are left unmapped.
func MembershipFromTable(table *domain.MetricTable) domain.SectorMembership {
	membership := make(domain.SectorMembership, table.Len())
	if table == nil {
		return membership
	}
	for _, row := range table.Rows {
		if row.Sector == "" {
			continue
		}
		membership[row.Company] = row.Sector
	}
	return membership
}

// AveragesFromTable computes the arithmetic mean of every metric per
// sector over the rows that have a present value. Sectors with no present
// value for a metric get no entry for it.
func AveragesFromTable(table *domain.MetricTable) domain.SectorAverages {
	averages := make(domain.SectorAverages)
	if table == nil {
		return averages
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]map[string]*acc)

	for _, row := range table.Rows {
		if row.Sector == "" {
			continue
		}
		bySector, ok := sums[row.Sector]
		if !ok {
			bySector = make(map[string]*acc, len(table.Metrics))
			sums[row.Sector] = bySector
		}
		for _, metric := range table.Metrics {
			v, ok := row.Value(metric).Get()
			if !ok {
				continue
			}
			a, ok := bySector[metric]
			if !ok {
				a = &acc{}
				bySector[metric] = a
			}
			a.sum += v
			a.count++
		}
	}

	for sector, byMetric := range sums {
		means := make(map[string]float64, len(byMetric))
		for metric, a := range byMetric {
			means[metric] = a.sum / float64(a.count)
		}
		averages[sector] = means
	}
	return averages
}

// Merge overlays extra on top of base and returns a new SectorAverages.
// Entries in base win; extra only fills sectors or metrics base lacks.
func Merge(base, extra domain.SectorAverages) domain.SectorAverages {
	out := make(domain.SectorAverages, len(base)+len(extra))
	for sector, means := range extra {
		m := make(map[string]float64, len(means))
		for k, v := range means {
			m[k] = v
		}
		out[sector] = m
	}
	for sector, means := range base {
		m, ok := out[sector]
		if !ok {
			m = make(map[string]float64, len(means))
			out[sector] = m
		}
		for k, v := range means {
			m[k] = v
		}
	}
	return out
}
