package insights

import (
	"fmt"
	"math/rand/v2"
	"time"

	"fitdash/internal/fitdata"
)

// Analysis is one full recompute of the derived views
type Analysis struct {
	Period      Period
	Metric      Metric
	Live        bool // derived from a fetched snapshot rather than placeholders
	Series      Series
	Radar       []RadarPoint
	Insights    []string
	GeneratedAt time.Time
}

// Analyze derives the series, radar and insights for the selection. An
// invalid selection yields the UnableToAnalyze insight and an error.
func Analyze(snap *fitdata.Snapshot, period Period, metric Metric, now time.Time, rng *rand.Rand) (Analysis, error) {
	a := Analysis{
		Period:      period,
		Metric:      metric,
		Live:        snap != nil,
		GeneratedAt: now,
	}

	if !period.Valid() {
		a.Insights = []string{UnableToAnalyze}
		return a, fmt.Errorf("analyzing: invalid period %d", int(period))
	}
	if _, err := ParseMetric(string(metric)); err != nil {
		a.Insights = []string{UnableToAnalyze}
		return a, fmt.Errorf("analyzing: %w", err)
	}

	a.Series = DeriveSeries(snap, period, now, rng)
	a.Radar = DeriveRadar(snap)
	a.Insights = GenerateInsights(snap)
	return a, nil
}

// Values returns the selected metric's series
func (a Analysis) Values() []float64 {
	return a.Series.Values(a.Metric)
}

// DateLabels returns the series dates formatted with layout
func (a Analysis) DateLabels(layout string) []string {
	labels := make([]string, len(a.Series))
	for i, d := range a.Series {
		labels[i] = d.Date.Format(layout)
	}
	return labels
}
