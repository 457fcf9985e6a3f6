// Package benchmark resolves a company's industry benchmark: the average of
// each metric across the company's sector.
//
// Resolution is a pure lookup. A company without a sector, a sector
// without averages and a metric missing from the sector's averages all
// resolve to domain.Unavailable(); nothing is inferred or interpolated and
// there is no error path.
package benchmark

import (
	"companylens/pkg/contracts/domain"
)

// Resolve returns the sector benchmark of company for every requested
// metric.
func Resolve(company string, membership domain.SectorMembership, averages domain.SectorAverages, metrics []string) domain.BenchmarkResult {
	result := make(domain.BenchmarkResult, len(metrics))

	means := sectorMeans(company, membership, averages)
	for _, metric := range metrics {
		if mean, ok := means[metric]; ok {
			result[metric] = domain.Available(mean)
			continue
		}
		result[metric] = domain.Unavailable()
	}
	return result
}

// SectorOf returns the company's sector label, if mapped.
func SectorOf(company string, membership domain.SectorMembership) (string, bool) {
	if membership == nil {
		return "", false
	}
	if sector, ok := membership[company]; ok {
		return sector, true
	}
	sector, ok := membership[domain.NormalizeCompany(company)]
	return sector, ok
}

func sectorMeans(company string, membership domain.SectorMembership, averages domain.SectorAverages) map[string]float64 {
	sector, ok := SectorOf(company, membership)
	if !ok || averages == nil {
		return nil
	}
	return averages[sector]
}
