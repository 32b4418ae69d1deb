package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"?", "Help (this screen)"},
		{"esc", "Back / close help"},
		{"q", "Quit"},
	}))

	sections = append(sections, m.renderSection("Google Fit", []keyHelp{
		{"c", "Connect (opens the Google sign-in page)"},
		{"r", "Fetch today's data again"},
	}))

	sections = append(sections, m.renderSection("Dashboard", []keyHelp{
		{"p", "Cycle period: 7, 30, 90 days"},
		{"m", "Cycle metric"},
		{"j / down", "Next insight section"},
		{"k / up", "Previous insight section"},
		{"enter / space", "Expand or collapse section"},
		{"pgup / pgdn", "Scroll"},
	}))

	sections = append(sections, m.renderMetricsHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, helpSectionStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, helpSectionStyle.Render("Metrics Explained"))
	lines = append(lines, "")

	metrics := []struct {
		name string
		desc string
	}{
		{"Performance", "Steps against a 10,000 step day."},
		{"Strength", "Calories burned against 3,000 kcal."},
		{"Endurance", "Distance against 10 km."},
		{"Recovery", "90 while heart rate stays under 100 bpm, 70 above."},
		{"Athlete Profile", "Today's channels scaled to 0-100. Heart rate scores 100 at 60 bpm."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+helpDescStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	lines = append(lines, helpDescStyle.Render("  Without a Google Fit connection the charts show sample data."))

	return strings.Join(lines, "\n")
}
