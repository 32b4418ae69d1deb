package insights

import "fitdash/internal/fitdata"

// FullMark is the outer ring of the radar
const FullMark = 100

// Radar channel names
const (
	ChannelSteps         = "Steps"
	ChannelCalories      = "Calories"
	ChannelDistance      = "Distance"
	ChannelHeartRate     = "Heart Rate"
	ChannelActiveMinutes = "Active Minutes"
)

// RadarPoint is one spoke of the athlete profile
type RadarPoint struct {
	Channel  string
	Value    float64 // within [0, FullMark]
	FullMark float64
}

// DeriveRadar scores the snapshot against the daily targets. Heart rate uses
// an inverted scale where 60 bpm scores 100. Without a snapshot the
// placeholder profile is returned.
func DeriveRadar(snap *fitdata.Snapshot) []RadarPoint {
	if snap == nil {
		return []RadarPoint{
			{ChannelSteps, 85, FullMark},
			{ChannelCalories, 90, FullMark},
			{ChannelDistance, 75, FullMark},
			{ChannelHeartRate, 80, FullMark},
			{ChannelActiveMinutes, 85, FullMark},
		}
	}

	return []RadarPoint{
		{ChannelSteps, clamp(float64(snap.Steps) / TargetSteps * 100), FullMark},
		{ChannelCalories, clamp(float64(snap.Calories) / TargetCalories * 100), FullMark},
		{ChannelDistance, clamp(snap.DistanceKm / TargetDistanceKm * 100), FullMark},
		{ChannelHeartRate, clamp(100 - (float64(snap.HeartRateBpm)-60)/100*100), FullMark},
		{ChannelActiveMinutes, clamp(float64(snap.ActiveMinutes) / TargetActiveMinutes * 100), FullMark},
	}
}

func clamp(v float64) float64 {
	return max(0, min(v, FullMark))
}
