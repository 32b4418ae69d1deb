package charts

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitdash/internal/fitdata"
	"fitdash/internal/insights"
)

func TestReport(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	snap := &fitdata.Snapshot{Steps: 12000, Calories: 2500, DistanceKm: 5.5, HeartRateBpm: 95, ActiveMinutes: 40}

	a, err := insights.Analyze(snap, insights.Period7, insights.MetricEndurance, now, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, a))

	html := buf.String()
	assert.Contains(t, html, "Performance Trends")
	assert.Contains(t, html, "Athlete Profile")
	assert.Contains(t, html, "Last 7 Days")
	assert.Contains(t, html, "Endurance")
	assert.Contains(t, html, "Oct 11")
	assert.Contains(t, html, "Oct 17")
	assert.Contains(t, html, "Active Minutes")
	assert.NotContains(t, html, "sample data")
}

func TestReport_Placeholder(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	a, err := insights.Analyze(nil, insights.Period30, insights.MetricRecovery, now, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, a))
	assert.Contains(t, buf.String(), "Last 30 Days (sample data)")
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 83.3, round1(83.3333))
	assert.Equal(t, 66.7, round1(66.6666))
	assert.Equal(t, 100.0, round1(100))
}
