package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jzx17/callguard/pkg/dedup"
)

// DedupCollector records matcher decisions. It implements dedup.Observer.
type DedupCollector struct {
	// Comparisons counts pairwise comparisons by result (duplicate, distinct)
	Comparisons *prometheus.CounterVec
	// Candidates counts CheckList candidates by result (duplicate, unique)
	Candidates *prometheus.CounterVec
	// Combined observes the combined score of every comparison
	Combined prometheus.Histogram
}

var _ dedup.Observer = (*DedupCollector)(nil)

// NewDedupCollector creates the duplicate-detection metrics and registers
// them with reg. A nil reg leaves the metrics unregistered.
func NewDedupCollector(reg prometheus.Registerer) *DedupCollector {
	factory := promauto.With(reg)

	return &DedupCollector{
		Comparisons: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "comparisons_total",
			Help:      "Pairwise comparisons by result",
		}, []string{"result"}),
		Candidates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "candidates_total",
			Help:      "Checked candidates by result",
		}, []string{"result"}),
		Combined: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "combined_similarity",
			Help:      "Distribution of combined similarity scores",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
}

// ObserveComparison implements dedup.Observer
func (c *DedupCollector) ObserveComparison(scores dedup.Scores, duplicate bool) {
	result := "distinct"
	if duplicate {
		result = "duplicate"
	}
	c.Comparisons.WithLabelValues(result).Inc()
	c.Combined.Observe(scores.Combined)
}

// ObserveCandidate implements dedup.Observer
func (c *DedupCollector) ObserveCandidate(duplicate bool) {
	result := "unique"
	if duplicate {
		result = "duplicate"
	}
	c.Candidates.WithLabelValues(result).Inc()
}
