package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"

	"fitdash/internal/fitdata"
	"fitdash/internal/insights"
	"fitdash/internal/metrics"
	"fitdash/internal/store"
)

// Session is the part of fitdata.Session the dashboard drives
type Session interface {
	Initialize(ctx context.Context) error
	Connect(ctx context.Context) error
	Fetch(ctx context.Context) error
	Status() fitdata.Status
	Subscribe(fn func(fitdata.Status)) (unsubscribe func())
}

// Preferences persists the selectors between runs
type Preferences interface {
	GetPreference(key string) (string, error)
	SetPreference(key, value string) error
}

// chrome is the number of lines taken by the app header, nav and footer
const chrome = 6

// DashboardModel is the analytics screen model
type DashboardModel struct {
	ctx     context.Context
	session Session
	updates <-chan fitdata.Status
	prefs   Preferences
	metrics *metrics.Manager
	rng     *rand.Rand
	now     func() time.Time

	period   insights.Period
	metric   insights.Metric
	status   fitdata.Status
	analysis insights.Analysis
	sections insights.Sections
	cursor   int
	busy     string
	loading  bool

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// NewDashboardModel creates a dashboard showing period and metric until
// the user picks others
func NewDashboardModel(ctx context.Context, session Session, updates <-chan fitdata.Status, prefs Preferences, period insights.Period, metric insights.Metric, m *metrics.Manager) DashboardModel {
	return DashboardModel{
		ctx:     ctx,
		session: session,
		updates: updates,
		prefs:   prefs,
		metrics: m,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:     time.Now,
		period:  period,
		metric:  metric,
		status:  session.Status(),
		loading: true,
	}
}

type statusMsg struct{}

type recomputeMsg struct{}

type opDoneMsg struct {
	op  string
	err error
}

// Init starts the session and the first analysis
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return recomputeMsg{} },
		m.waitForStatus(),
		m.run("initialize", m.session.Initialize),
	)
}

func (m DashboardModel) waitForStatus() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-m.updates:
			return statusMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m DashboardModel) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case recomputeMsg:
		m.recompute()

	case statusMsg:
		// the channel only signals a change; read the latest state
		m.status = m.session.Status()
		m.recompute()
		cmds = append(cmds, m.waitForStatus())

	case opDoneMsg:
		m.busy = ""
		m.status = m.session.Status()
		if msg.err != nil {
			log.WithError(msg.err).Debugf("%s finished with error", msg.op)
		}
		m.refreshContent()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = newViewport(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if m.busy == "" && !m.loading {
				m.busy = "Connecting to Google Fit..."
				m.refreshContent()
				return m, m.run("connect", m.session.Connect)
			}
		case "r":
			if m.busy == "" && m.status.Connected {
				m.busy = "Fetching today's data..."
				m.refreshContent()
				return m, m.run("fetch", m.session.Fetch)
			}
		case "p":
			m.period = m.period.Next()
			m.savePreference(store.PrefPeriod, m.period.Key())
			m.recompute()
		case "m":
			m.metric = m.metric.Next()
			m.savePreference(store.PrefMetric, string(m.metric))
			m.recompute()
		case "j", "down":
			if m.cursor < len(insights.Headers(m.analysis.Insights))-1 {
				m.cursor++
			}
			m.refreshContent()
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
			m.refreshContent()
		case "enter", " ":
			headers := insights.Headers(m.analysis.Insights)
			if m.cursor < len(headers) {
				m.sections.Toggle(insights.SectionKey(headers[m.cursor]))
			}
			m.refreshContent()
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// newViewport scrolls by page only; arrows and space belong to the insights list
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, max(height, 1))
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}
	return vp
}

func (m *DashboardModel) recompute() {
	a, err := insights.Analyze(m.status.Snapshot, m.period, m.metric, m.now(), m.rng)
	if err != nil {
		log.WithError(err).Error("error analyzing data")
	}
	m.analysis = a
	m.loading = false

	if n := len(insights.Headers(a.Insights)); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.metrics != nil {
		m.metrics.CounterRecomputes.Inc()
	}
	m.refreshContent()
}

func (m *DashboardModel) savePreference(key, value string) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.SetPreference(key, value); err != nil {
		log.WithError(err).Warnf("saving preference %s", key)
	}
}

func (m *DashboardModel) refreshContent() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  c: connect  r: refresh  p: period  m: metric  j/k: move  enter: expand  pgup/pgdn: scroll")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m DashboardModel) renderContent() string {
	sections := []string{m.renderToolbar()}

	if m.status.Err != nil {
		sections = append(sections, errorStyle.Render("  "+m.status.Err.Message))
	}
	if m.busy != "" {
		sections = append(sections, warningStyle.Render("  "+m.busy))
	}

	charts := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTrends(), "  ", m.renderProfile())
	sections = append(sections, charts)

	if m.status.Snapshot != nil {
		sections = append(sections, m.renderToday())
	}

	sections = append(sections, m.renderInsights())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderToolbar() string {
	indicator := m.status.Indicator()
	button := buttonConnectStyle
	switch {
	case m.status.Connected:
		button = buttonConnectedStyle
	case m.status.Err != nil:
		button = buttonErrorStyle
	}

	parts := []string{
		button.Render("♥ " + indicator),
		selectorStyle.Render(m.metric.Label() + " ▾"),
		selectorStyle.Render(m.period.Label() + " ▾"),
	}
	if !m.status.LastFetch.IsZero() {
		parts = append(parts, helpDescStyle.Render("updated "+humanize.Time(m.status.LastFetch)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, "  "))
}

func (m DashboardModel) renderTrends() string {
	title := cardTitleStyle.Render("Performance Trends")

	values := m.analysis.Values()
	if len(values) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No data"))
	}

	graph := asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(50),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(m.metric.Label()+" - "+m.period.Label()),
	)

	labels := m.analysis.DateLabels("Jan 2")
	axis := helpDescStyle.Render(fmt.Sprintf("%s … %s", labels[0], labels[len(labels)-1]))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, axis))
}

func (m DashboardModel) renderProfile() string {
	title := cardTitleStyle.Render("Athlete Profile")

	var lines []string
	for _, p := range m.analysis.Radar {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Left,
			metricLabelStyle.Render(p.Channel),
			RenderProgressBar(p.Value/p.FullMark, 20),
			metricValueStyle.Render(fmt.Sprintf(" %3.0f", p.Value)),
		))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderToday() string {
	snap := m.status.Snapshot
	title := cardTitleStyle.Render("Today")

	stepsTrend := ""
	if snap.Steps > insights.TargetSteps {
		stepsTrend = "↑ above goal"
	}

	lines := []string{
		RenderMetric("Steps", humanize.Comma(int64(snap.Steps)), stepsTrend),
		RenderMetric("Distance", fmt.Sprintf("%.2f km", snap.DistanceKm), ""),
		RenderMetric("Calories", humanize.Comma(int64(snap.Calories))+" kcal", ""),
		RenderMetric("Heart Rate", fmt.Sprintf("%d bpm", snap.HeartRateBpm), ""),
		RenderMetric("Active Minutes", fmt.Sprintf("%d mins", snap.ActiveMinutes), ""),
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderInsights() string {
	title := cardTitleStyle.Render("AI Insights")

	if m.loading {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "Analyzing..."))
	}

	items := m.analysis.Insights
	headers := insights.Headers(items)
	if len(headers) == 0 {
		// the fallback line has no section
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(items, "\n")))
	}

	var lines []string
	for i, header := range headers {
		key := insights.SectionKey(header)
		expanded := m.sections.IsExpanded(key)

		marker := "▸"
		if expanded {
			marker = "▾"
		}

		style := insightHeaderStyle
		if i == m.cursor {
			style = insightSelectedStyle
		}
		lines = append(lines, style.Render(marker+" "+header))

		if expanded {
			if body := insights.Body(items, key); len(body) > 0 {
				lines = append(lines, insightBodyStyle.Render(strings.Join(body, "\n")))
			}
		}
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
