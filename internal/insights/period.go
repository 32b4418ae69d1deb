package insights

import (
	"fmt"
	"strings"
)

// Period is the number of days shown in the series
type Period int

const (
	Period7  Period = 7
	Period30 Period = 30
	Period90 Period = 90
)

// DefaultPeriod is selected on first start
const DefaultPeriod = Period30

// Periods lists the selectable periods in display order
var Periods = []Period{Period7, Period30, Period90}

// Label returns the selector text, e.g. "Last 30 Days"
func (p Period) Label() string {
	return fmt.Sprintf("Last %d Days", int(p))
}

// Key returns the config form, e.g. "30d"
func (p Period) Key() string {
	return fmt.Sprintf("%dd", int(p))
}

// Valid reports whether p is one of Periods
func (p Period) Valid() bool {
	return p == Period7 || p == Period30 || p == Period90
}

// Next cycles to the following period
func (p Period) Next() Period {
	for i, candidate := range Periods {
		if candidate == p {
			return Periods[(i+1)%len(Periods)]
		}
	}
	return DefaultPeriod
}

// ParsePeriod accepts either the key ("7d") or the label ("Last 7 Days")
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	for _, p := range Periods {
		if strings.EqualFold(s, p.Key()) || strings.EqualFold(s, p.Label()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown period %q", s)
}

// Metric is one channel of the derived series
type Metric string

const (
	MetricPerformance Metric = "performance"
	MetricStrength    Metric = "strength"
	MetricEndurance   Metric = "endurance"
	MetricRecovery    Metric = "recovery"
	MetricNutrition   Metric = "nutrition"
)

// DefaultMetric is selected on first start
const DefaultMetric = MetricPerformance

// Metrics lists the selectable metrics. Nutrition is derived but not offered.
var Metrics = []Metric{MetricPerformance, MetricStrength, MetricEndurance, MetricRecovery}

// Label returns the capitalized name
func (m Metric) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// Next cycles to the following selectable metric
func (m Metric) Next() Metric {
	for i, candidate := range Metrics {
		if candidate == m {
			return Metrics[(i+1)%len(Metrics)]
		}
	}
	return DefaultMetric
}

// ParseMetric accepts a selectable metric name, case-insensitively
func ParseMetric(s string) (Metric, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Metrics {
		if s == string(m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}
