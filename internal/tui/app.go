package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"fitdash/internal/config"
	"fitdash/internal/fitdata"
	"fitdash/internal/insights"
	"fitdash/internal/metrics"
	"fitdash/internal/store"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard DashboardModel
	help      HelpModel

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App. The selectors start from the stored preferences,
// falling back to the display config.
func NewApp(session Session, prefs Preferences, display config.DisplayConfig, m *metrics.Manager) *App {
	ctx, cancel := context.WithCancel(context.Background())

	// one pending signal is enough: the dashboard rereads Status on each
	updates := make(chan fitdata.Status, 1)
	unsubscribe := session.Subscribe(func(st fitdata.Status) {
		select {
		case updates <- st:
		default:
		}
	})

	period, metric := initialSelection(prefs, display)

	return &App{
		screen:      ScreenDashboard,
		dashboard:   NewDashboardModel(ctx, session, updates, prefs, period, metric, m),
		help:        NewHelpModel(),
		ctx:         ctx,
		cancel:      cancel,
		unsubscribe: unsubscribe,
	}
}

func initialSelection(prefs Preferences, display config.DisplayConfig) (insights.Period, insights.Metric) {
	periodKey, metricKey := display.Period, display.Metric
	if prefs != nil {
		if v, err := prefs.GetPreference(store.PrefPeriod); err != nil {
			log.WithError(err).Warn("reading period preference")
		} else if v != "" {
			periodKey = v
		}
		if v, err := prefs.GetPreference(store.PrefMetric); err != nil {
			log.WithError(err).Warn("reading metric preference")
		} else if v != "" {
			metricKey = v
		}
	}

	period, err := insights.ParsePeriod(periodKey)
	if err != nil {
		period = insights.DefaultPeriod
	}
	metric, err := insights.ParseMetric(metricKey)
	if err != nil {
		metric = insights.DefaultMetric
	}
	return period, metric
}

// Close stops pending operations and the status subscription
func (a *App) Close() {
	a.cancel()
	a.unsubscribe()
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.cancel()
			return a, tea.Quit
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			}
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	// Status and operation results always reach the dashboard, even
	// behind the help screen
	var cmd tea.Cmd
	switch msg.(type) {
	case tea.KeyMsg:
		if a.screen == ScreenHelp {
			var m tea.Model
			m, cmd = a.help.Update(msg)
			a.help = m.(HelpModel)
			return a, cmd
		}
	}

	var m tea.Model
	m, cmd = a.dashboard.Update(msg)
	a.dashboard = m.(DashboardModel)

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Performance Analytics")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"esc", "Dashboard", ScreenDashboard},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}
