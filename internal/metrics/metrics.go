// Package metrics defines the minimal backend interface the enrichment CLI
// reports to. Engine packages never import a vendor SDK; they see only
// Backend.
package metrics

// Labels are free-form metric dimensions (e.g. {"status": "ok"}).
type Labels map[string]string

// Backend receives counters and duration samples. Implementations must be
// safe for concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names emitted by cmd/enrich.
const (
	TemplatesTotal     = "enrich_templates_total"      // labels: status=ok|invalid
	ColumnsTotal       = "enrich_columns_total"        // labels: kind=resolved|unresolved|picklist
	RunDurationSeconds = "enrich_run_duration_seconds" // no labels
)

// Nop discards all metrics. Used when no backend is configured.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}

var _ Backend = Nop{}
