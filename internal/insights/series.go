package insights

import (
	"math/rand/v2"
	"time"

	"fitdash/internal/fitdata"
)

// Nominal daily targets the snapshot is scored against
const (
	TargetSteps         = 10000
	TargetCalories      = 3000
	TargetDistanceKm    = 10
	TargetActiveMinutes = 60
	RecoveryHeartRate   = 100
)

// Placeholder bands used when there is no snapshot: base + [0, span)
var jitter = map[Metric]struct{ base, span float64 }{
	MetricPerformance: {85, 15},
	MetricStrength:    {80, 20},
	MetricEndurance:   {75, 25},
	MetricRecovery:    {70, 30},
	MetricNutrition:   {75, 25},
}

// DayScore holds the five channel scores of one day
type DayScore struct {
	Date        time.Time
	Performance float64
	Strength    float64
	Endurance   float64
	Recovery    float64
	Nutrition   float64
}

// Value returns the score of metric m
func (d DayScore) Value(m Metric) float64 {
	switch m {
	case MetricPerformance:
		return d.Performance
	case MetricStrength:
		return d.Strength
	case MetricEndurance:
		return d.Endurance
	case MetricRecovery:
		return d.Recovery
	case MetricNutrition:
		return d.Nutrition
	default:
		return 0
	}
}

// Series is one DayScore per day, oldest first
type Series []DayScore

// Values returns the scores of metric m in order
func (s Series) Values(m Metric) []float64 {
	out := make([]float64, len(s))
	for i, d := range s {
		out[i] = d.Value(m)
	}
	return out
}

// DeriveSeries builds one entry per calendar day ending on now's day.
//
// With a snapshot every day carries the same scores: there is only today's
// aggregate to go on, so the series is flat. Without one each channel is
// drawn from its placeholder band. Nutrition is always a placeholder.
// Scores are not clamped and go past 100 when a target is exceeded.
// An invalid period yields an empty series.
func DeriveSeries(snap *fitdata.Snapshot, period Period, now time.Time, rng *rand.Rand) Series {
	if !period.Valid() {
		return nil
	}
	if rng == nil {
		rng = newRand()
	}

	days := int(period)
	series := make(Series, days)
	for i := range days {
		date := time.Date(now.Year(), now.Month(), now.Day()-(days-1-i), 0, 0, 0, 0, now.Location())
		day := DayScore{Date: date}

		if snap != nil {
			day.Performance = float64(snap.Steps) / TargetSteps * 100
			day.Strength = float64(snap.Calories) / TargetCalories * 100
			day.Endurance = snap.DistanceKm / TargetDistanceKm * 100
			day.Recovery = 70
			if snap.HeartRateBpm < RecoveryHeartRate {
				day.Recovery = 90
			}
		} else {
			day.Performance = draw(rng, MetricPerformance)
			day.Strength = draw(rng, MetricStrength)
			day.Endurance = draw(rng, MetricEndurance)
			day.Recovery = draw(rng, MetricRecovery)
		}
		day.Nutrition = draw(rng, MetricNutrition)

		series[i] = day
	}
	return series
}

func draw(rng *rand.Rand, m Metric) float64 {
	band := jitter[m]
	return band.base + rng.Float64()*band.span
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
