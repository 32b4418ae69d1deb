package insights

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitdash/internal/fitdata"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func sampleSnapshot() *fitdata.Snapshot {
	return &fitdata.Snapshot{Steps: 12000, Calories: 2500, DistanceKm: 5.5, HeartRateBpm: 95, ActiveMinutes: 40}
}

func radarValues(points []RadarPoint) map[string]float64 {
	out := make(map[string]float64, len(points))
	for _, p := range points {
		out[p.Channel] = p.Value
	}
	return out
}

func TestDeriveRadar_Sample(t *testing.T) {
	got := radarValues(DeriveRadar(sampleSnapshot()))

	assert.Equal(t, 100.0, got[ChannelSteps])
	assert.InDelta(t, 83.33, got[ChannelCalories], 0.01)
	assert.InDelta(t, 55.0, got[ChannelDistance], 1e-9)
	assert.InDelta(t, 65.0, got[ChannelHeartRate], 1e-9)
	assert.InDelta(t, 66.67, got[ChannelActiveMinutes], 0.01)
}

func TestDeriveRadar_Placeholder(t *testing.T) {
	points := DeriveRadar(nil)
	require.Len(t, points, 5)

	want := []RadarPoint{
		{ChannelSteps, 85, 100},
		{ChannelCalories, 90, 100},
		{ChannelDistance, 75, 100},
		{ChannelHeartRate, 80, 100},
		{ChannelActiveMinutes, 85, 100},
	}
	assert.Equal(t, want, points)
}

func TestDeriveRadar_AlwaysWithinBounds(t *testing.T) {
	faker := gofakeit.New(42)

	snapshots := []*fitdata.Snapshot{
		{},
		{Steps: 1 << 40, Calories: 1 << 40, DistanceKm: 1e12, HeartRateBpm: 1 << 30, ActiveMinutes: 1 << 40},
		{HeartRateBpm: 1},
	}
	for range 500 {
		snapshots = append(snapshots, &fitdata.Snapshot{
			Steps:         faker.IntRange(0, 200000),
			Calories:      faker.IntRange(0, 50000),
			DistanceKm:    faker.Float64Range(0, 500),
			HeartRateBpm:  faker.IntRange(0, 400),
			ActiveMinutes: faker.IntRange(0, 1440),
		})
	}

	for _, snap := range snapshots {
		for _, p := range DeriveRadar(snap) {
			assert.GreaterOrEqual(t, p.Value, 0.0, "%s for %+v", p.Channel, *snap)
			assert.LessOrEqual(t, p.Value, 100.0, "%s for %+v", p.Channel, *snap)
			assert.Equal(t, float64(FullMark), p.FullMark)
		}
	}
}

func TestDeriveSeries_Placeholder(t *testing.T) {
	series := DeriveSeries(nil, Period7, testNow, testRand())
	require.Len(t, series, 7)

	for i, day := range series {
		wantDate := time.Date(2026, 10, 11+i, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantDate, day.Date, "day %d", i)

		assert.True(t, day.Performance >= 85 && day.Performance < 100, "performance %v", day.Performance)
		assert.True(t, day.Strength >= 80 && day.Strength < 100, "strength %v", day.Strength)
		assert.True(t, day.Endurance >= 75 && day.Endurance < 100, "endurance %v", day.Endurance)
		assert.True(t, day.Recovery >= 70 && day.Recovery < 100, "recovery %v", day.Recovery)
		assert.True(t, day.Nutrition >= 75 && day.Nutrition < 100, "nutrition %v", day.Nutrition)
	}
}

func TestDeriveSeries_Periods(t *testing.T) {
	for _, p := range Periods {
		series := DeriveSeries(nil, p, testNow, nil)
		require.Len(t, series, int(p))
		assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), series[len(series)-1].Date)
		assert.True(t, series[0].Date.Before(series[1].Date))
	}
}

func TestDeriveSeries_InvalidPeriod(t *testing.T) {
	for _, p := range []Period{-1, 0, 14} {
		assert.Empty(t, DeriveSeries(sampleSnapshot(), p, testNow, testRand()))
		assert.Empty(t, DeriveSeries(nil, p, testNow, nil))
	}
}

func TestDeriveSeries_SnapshotIsFlat(t *testing.T) {
	series := DeriveSeries(sampleSnapshot(), Period30, testNow, testRand())
	require.Len(t, series, 30)

	for _, day := range series {
		assert.InDelta(t, 120.0, day.Performance, 1e-9)
		assert.InDelta(t, 83.33, day.Strength, 0.01)
		assert.InDelta(t, 55.0, day.Endurance, 1e-9)
		assert.Equal(t, 90.0, day.Recovery)
		assert.True(t, day.Nutrition >= 75 && day.Nutrition < 100)
	}
}

func TestDeriveSeries_HighHeartRateRecovery(t *testing.T) {
	snap := &fitdata.Snapshot{HeartRateBpm: 100}
	series := DeriveSeries(snap, Period7, testNow, testRand())
	for _, day := range series {
		assert.Equal(t, 70.0, day.Recovery)
	}
}

func TestDeriveSeries_SameSeedSameSeries(t *testing.T) {
	a := DeriveSeries(nil, Period90, testNow, testRand())
	b := DeriveSeries(nil, Period90, testNow, testRand())
	assert.Equal(t, a, b)
}

func TestGenerateInsights_Snapshot(t *testing.T) {
	items := GenerateInsights(&fitdata.Snapshot{Steps: 8421, Calories: 2100, DistanceKm: 6.1, HeartRateBpm: 105, ActiveMinutes: 20})

	want := []string{
		"🏃‍♂️ Daily Activity:",
		"- Steps: 8,421 steps\n- Distance: 6.10 km\n- Calories: 2,100 kcal",
		"",
		"📈 Performance Analysis:",
		"- Active Minutes: 20 mins\n- Average Heart Rate: 105 bpm\n- Activity level is below daily goal",
		"",
		"💡 Recommendations:",
		"- Increase daily steps to reach 10,000 goal\n- Aim for at least 30 minutes of active time\n- Consider more recovery activities",
	}
	assert.Equal(t, want, items)
}

func TestGenerateInsights_Recommendations(t *testing.T) {
	tests := []struct {
		name string
		snap fitdata.Snapshot
		want []string
	}{
		{
			name: "10500 steps keeps the current level",
			snap: fitdata.Snapshot{Steps: 10500, ActiveMinutes: 45, HeartRateBpm: 70},
			want: []string{
				"- Maintain current activity level",
				"- Good job on staying active",
				"- Heart rate levels are optimal",
			},
		},
		{
			name: "exactly on target",
			snap: fitdata.Snapshot{Steps: 10000, ActiveMinutes: 30, HeartRateBpm: 100},
			want: []string{
				"- Maintain current activity level",
				"- Good job on staying active",
				"- Heart rate levels are optimal",
			},
		},
		{
			name: "below every threshold",
			snap: fitdata.Snapshot{Steps: 9999, ActiveMinutes: 29, HeartRateBpm: 101},
			want: []string{
				"- Increase daily steps to reach 10,000 goal",
				"- Aim for at least 30 minutes of active time",
				"- Consider more recovery activities",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := GenerateInsights(&tt.snap)
			assert.Equal(t, tt.want, Body(items, SectionKey(HeaderRecommend)))
		})
	}
}

func TestGenerateInsights_ActivityLevel(t *testing.T) {
	at := Body(GenerateInsights(&fitdata.Snapshot{Steps: 10000}), "📈 Performance Analysis")
	assert.Contains(t, at, "- Activity level is below daily goal")

	above := Body(GenerateInsights(&fitdata.Snapshot{Steps: 10001}), "📈 Performance Analysis")
	assert.Contains(t, above, "- Activity level is above daily goal")
}

func TestGenerateInsights_Placeholder(t *testing.T) {
	items := GenerateInsights(nil)

	assert.Equal(t, []string{HeaderDailyActivity, HeaderPerformance, HeaderRecommend}, Headers(items))
	assert.Equal(t, []string{"- Connect Google Fit to see your daily activity"}, Body(items, "🏃‍♂️ Daily Activity"))
	assert.Equal(t, []string{"- Connect Google Fit to get personalized recommendations"}, Body(items, "💡 Recommendations"))
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader(HeaderDailyActivity))
	assert.True(t, IsHeader(HeaderPerformance))
	assert.True(t, IsHeader(HeaderNutrition))
	assert.True(t, IsHeader(HeaderRecommend))
	assert.False(t, IsHeader("- Steps: 1 steps"))
	assert.False(t, IsHeader(""))

	// recognized, never generated
	assert.NotContains(t, GenerateInsights(sampleSnapshot()), HeaderNutrition)
	assert.NotContains(t, GenerateInsights(nil), HeaderNutrition)
}

func TestSectionKey(t *testing.T) {
	assert.Equal(t, "💡 Recommendations", SectionKey(HeaderRecommend))
	assert.Equal(t, "no colon", SectionKey("no colon"))
}

func TestBody_StopsAtNextHeader(t *testing.T) {
	items := []string{"📈 A:", "one\ntwo", "", "💡 B:", "three"}

	assert.Equal(t, []string{"one", "two"}, Body(items, "📈 A"))
	assert.Equal(t, []string{"three"}, Body(items, "💡 B"))
	assert.Empty(t, Body(items, "🍎 C"))
}

func TestSections_Toggle(t *testing.T) {
	var s Sections
	key := SectionKey(HeaderDailyActivity)

	assert.Equal(t, "", s.Expanded())

	s.Toggle(key)
	assert.True(t, s.IsExpanded(key))

	s.Toggle(key)
	assert.False(t, s.IsExpanded(key))
	assert.Equal(t, "", s.Expanded())

	// at most one expanded
	s.Toggle(key)
	s.Toggle(SectionKey(HeaderRecommend))
	assert.False(t, s.IsExpanded(key))
	assert.True(t, s.IsExpanded(SectionKey(HeaderRecommend)))
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "Last 30 Days", Period30.Label())
	assert.Equal(t, "7d", Period7.Key())
	assert.Equal(t, Period30, Period7.Next())
	assert.Equal(t, Period90, Period30.Next())
	assert.Equal(t, Period7, Period90.Next())
	assert.Equal(t, DefaultPeriod, Period(14).Next())

	for _, in := range []string{"90d", "Last 90 Days", " last 90 days "} {
		p, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, Period90, p)
	}
	_, err := ParsePeriod("14d")
	assert.Error(t, err)
}

func TestMetric(t *testing.T) {
	assert.Equal(t, "Endurance", MetricEndurance.Label())
	assert.Equal(t, MetricStrength, MetricPerformance.Next())
	assert.Equal(t, MetricPerformance, MetricRecovery.Next())

	m, err := ParseMetric("Recovery")
	require.NoError(t, err)
	assert.Equal(t, MetricRecovery, m)

	_, err = ParseMetric("nutrition")
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	a, err := Analyze(sampleSnapshot(), Period7, MetricEndurance, testNow, testRand())
	require.NoError(t, err)

	assert.True(t, a.Live)
	assert.Len(t, a.Series, 7)
	assert.Len(t, a.Radar, 5)
	assert.Equal(t, GenerateInsights(sampleSnapshot()), a.Insights)
	assert.InDeltaSlice(t, []float64{55, 55, 55, 55, 55, 55, 55}, a.Values(), 1e-9)
	assert.Equal(t, "10/11", a.DateLabels("01/02")[0])
	assert.Equal(t, "10/17", a.DateLabels("01/02")[6])
}

func TestAnalyze_InvalidSelection(t *testing.T) {
	a, err := Analyze(nil, Period(14), MetricPerformance, testNow, testRand())
	assert.Error(t, err)
	assert.Equal(t, []string{UnableToAnalyze}, a.Insights)
	assert.Empty(t, a.Series)

	a, err = Analyze(nil, Period7, MetricNutrition, testNow, testRand())
	assert.Error(t, err)
	assert.Equal(t, []string{UnableToAnalyze}, a.Insights)
}
