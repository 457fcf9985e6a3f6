package dataprocessing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"companylens/pkg/contracts/domain"
)

// NoDefinition is returned for metrics without a known definition.
const NoDefinition = "No definition available"

type definitionsFile struct {
	Metrics []domain.MetricDefinition `json:"metrics"`
}

// MetricDefinitions resolves a metric label to its definition by id, name
// or alias. Later entries override earlier ones for the same key. A nil
// *MetricDefinitions is empty.
type MetricDefinitions struct {
	metrics []domain.MetricDefinition
	exact   map[string]int
	folded  map[string]int
}

// ParseDefinitions decodes a definitions document of the form
// {"metrics":[{"id","name","aliases","definition"}]}.
func ParseDefinitions(r io.Reader) (*MetricDefinitions, error) {
	var doc definitionsFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode definitions: %w", err)
	}
	return NewMetricDefinitions(doc.Metrics), nil
}

// LoadDefinitions reads a definitions document from disk.
func LoadDefinitions(path string) (*MetricDefinitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions: %w", err)
	}
	defer f.Close()
	return ParseDefinitions(f)
}

// NewMetricDefinitions indexes the given definitions.
func NewMetricDefinitions(metrics []domain.MetricDefinition) *MetricDefinitions {
	d := &MetricDefinitions{
		metrics: append([]domain.MetricDefinition(nil), metrics...),
		exact:   make(map[string]int),
		folded:  make(map[string]int),
	}
	for i, m := range d.metrics {
		keys := append([]string{m.ID, m.Name}, m.Aliases...)
		for _, k := range keys {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			d.exact[k] = i
			d.folded[strings.ToLower(k)] = i
		}
	}
	return d
}

// Lookup finds the definition for metric. Exact keys win over
// case-insensitive matches.
func (d *MetricDefinitions) Lookup(metric string) (domain.MetricDefinition, bool) {
	if d == nil {
		return domain.MetricDefinition{}, false
	}
	key := strings.TrimSpace(metric)
	if i, ok := d.exact[key]; ok {
		return d.metrics[i], true
	}
	if i, ok := d.folded[strings.ToLower(key)]; ok {
		return d.metrics[i], true
	}
	return domain.MetricDefinition{}, false
}

// Definition returns the definition text for metric, or NoDefinition.
func (d *MetricDefinitions) Definition(metric string) string {
	m, ok := d.Lookup(metric)
	if !ok || m.Definition == "" {
		return NoDefinition
	}
	return m.Definition
}

// Len returns the number of definitions.
func (d *MetricDefinitions) Len() int {
	if d == nil {
		return 0
	}
	return len(d.metrics)
}
