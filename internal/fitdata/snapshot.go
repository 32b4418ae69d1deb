package fitdata

import (
	"math"
	"time"

	"fitdash/internal/googlefit"
)

// Snapshot is one aggregated reading for the current day
type Snapshot struct {
	Steps         int
	Calories      int     // kcal
	DistanceKm    float64 // two decimals
	HeartRateBpm  int     // 0 when unknown
	ActiveMinutes int
}

// ParseAggregate normalizes the first bucket of resp into a Snapshot.
// A channel missing from the response reads as zero; only a response with no
// bucket or no dataset at all is an error.
func ParseAggregate(resp *googlefit.AggregateResponse) (Snapshot, error) {
	if resp == nil || len(resp.Bucket) == 0 || len(resp.Bucket[0].Dataset) == 0 {
		return Snapshot{}, newError(ErrNoData, "No fitness data available", nil)
	}

	var snap Snapshot
	for _, ds := range resp.Bucket[0].Dataset {
		if len(ds.Point) == 0 || len(ds.Point[0].Value) == 0 {
			continue
		}
		v := ds.Point[0].Value[0]
		if v.IsZero() {
			continue
		}

		switch ds.DataSourceID {
		case googlefit.SourceSteps:
			snap.Steps = intValue(v)
		case googlefit.SourceCalories:
			snap.Calories = truncate(fpValue(v))
		case googlefit.SourceDistance:
			snap.DistanceKm = math.Max(0, math.Round(fpValue(v)/1000*100)/100)
		case googlefit.SourceHeartRate:
			snap.HeartRateBpm = truncate(math.Round(fpValue(v)))
		case googlefit.SourceActiveMinutes:
			snap.ActiveMinutes = intValue(v)
		}
	}

	return snap, nil
}

// BuildTodayRequest asks for one bucket spanning local midnight to now
func BuildTodayRequest(now time.Time) googlefit.AggregateRequest {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start, end := midnight.UnixMilli(), now.UnixMilli()

	// the API rejects an empty bucket
	duration := max(end-start, 1)

	return googlefit.AggregateRequest{
		UserID: googlefit.UserMe,
		AggregateBy: []googlefit.AggregateBy{
			{DataTypeName: googlefit.DataTypeStepCount},
			{DataTypeName: googlefit.DataTypeCalories},
			{DataTypeName: googlefit.DataTypeDistance},
			{DataTypeName: googlefit.DataTypeHeartRate},
			{DataTypeName: googlefit.DataTypeActiveMinutes},
		},
		BucketByTime:    googlefit.BucketByTime{DurationMillis: duration},
		StartTimeMillis: start,
		EndTimeMillis:   end,
	}
}

func intValue(v googlefit.Value) int {
	if v.IntVal != 0 {
		return max(0, int(v.IntVal))
	}
	return truncate(v.FpVal)
}

func fpValue(v googlefit.Value) float64 {
	if v.FpVal != 0 {
		return v.FpVal
	}
	return float64(v.IntVal)
}

func truncate(f float64) int {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt
	}
	return int(f)
}
