package insights

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"fitdash/internal/fitdata"
)

// Section headers. HeaderNutrition is recognized as a header but nothing
// generates it yet.
const (
	HeaderDailyActivity = "🏃‍♂️ Daily Activity:"
	HeaderPerformance   = "📈 Performance Analysis:"
	HeaderNutrition     = "🍎 Nutrition:"
	HeaderRecommend     = "💡 Recommendations:"
)

// UnableToAnalyze replaces the insights when the analysis cannot be built
const UnableToAnalyze = "Unable to analyze data at this time"

var headerPrefixes = []string{"🏃‍♂️", "📈", "🍎", "💡"}

// GenerateInsights returns the insight items in display order: each header
// is followed by one body item (possibly multi-line) and a blank separator.
func GenerateInsights(snap *fitdata.Snapshot) []string {
	if snap == nil {
		return []string{
			HeaderDailyActivity,
			"- Connect Google Fit to see your daily activity",
			"",
			HeaderPerformance,
			"- Sync with Google Fit for detailed analysis",
			"",
			HeaderRecommend,
			"- Connect Google Fit to get personalized recommendations",
		}
	}

	level := "below"
	if snap.Steps > TargetSteps {
		level = "above"
	}

	steps := "- Maintain current activity level"
	if snap.Steps < TargetSteps {
		steps = "- Increase daily steps to reach 10,000 goal"
	}
	active := "- Good job on staying active"
	if snap.ActiveMinutes < 30 {
		active = "- Aim for at least 30 minutes of active time"
	}
	heart := "- Heart rate levels are optimal"
	if snap.HeartRateBpm > RecoveryHeartRate {
		heart = "- Consider more recovery activities"
	}

	return []string{
		HeaderDailyActivity,
		strings.Join([]string{
			fmt.Sprintf("- Steps: %s steps", humanize.Comma(int64(snap.Steps))),
			fmt.Sprintf("- Distance: %.2f km", snap.DistanceKm),
			fmt.Sprintf("- Calories: %s kcal", humanize.Comma(int64(snap.Calories))),
		}, "\n"),
		"",
		HeaderPerformance,
		strings.Join([]string{
			fmt.Sprintf("- Active Minutes: %d mins", snap.ActiveMinutes),
			fmt.Sprintf("- Average Heart Rate: %d bpm", snap.HeartRateBpm),
			"- Activity level is " + level + " daily goal",
		}, "\n"),
		"",
		HeaderRecommend,
		strings.Join([]string{steps, active, heart}, "\n"),
	}
}

// IsHeader reports whether item starts a section
func IsHeader(item string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(item, prefix) {
			return true
		}
	}
	return false
}

// SectionKey is the header up to its colon, e.g. "💡 Recommendations"
func SectionKey(header string) string {
	if i := strings.Index(header, ":"); i >= 0 {
		return header[:i]
	}
	return header
}

// Headers returns the header items in order
func Headers(items []string) []string {
	var headers []string
	for _, item := range items {
		if IsHeader(item) {
			headers = append(headers, item)
		}
	}
	return headers
}

// Body returns the non-empty lines between the header with key and the next
// header. Multi-line items are split.
func Body(items []string, key string) []string {
	var lines []string
	inside := false
	for _, item := range items {
		if IsHeader(item) {
			if inside {
				break
			}
			inside = SectionKey(item) == key
			continue
		}
		if !inside {
			continue
		}
		for _, line := range strings.Split(item, "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// Sections tracks which section is expanded. At most one is; the zero value
// has all collapsed.
type Sections struct {
	expanded string
}

// Toggle expands key, or collapses it when it is already expanded
func (s *Sections) Toggle(key string) {
	if s.expanded == key {
		s.expanded = ""
		return
	}
	s.expanded = key
}

// Expanded returns the expanded key, or "" when all are collapsed
func (s *Sections) Expanded() string {
	return s.expanded
}

func (s *Sections) IsExpanded(key string) bool {
	return key != "" && s.expanded == key
}
