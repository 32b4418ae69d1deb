package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"fitdash/internal/auth"
	"fitdash/internal/charts"
	"fitdash/internal/config"
	"fitdash/internal/fitdata"
	"fitdash/internal/googlefit"
	"fitdash/internal/insights"
	"fitdash/internal/logging"
	"fitdash/internal/metrics"
	"fitdash/internal/store"
	"fitdash/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fitdash:", err)
		os.Exit(1)
	}
}

func run() (err error) {
	configPath := flag.String("config", "", "path to config.json (default ~/.fitdash/config.json)")
	htmlOut := flag.String("html", "", "write the charts to this HTML file and exit")
	openReport := flag.Bool("open", false, "open the HTML report in the browser (with -html)")
	period := flag.String("period", "", "period to show: 7d, 30d or 90d")
	metric := flag.String("metric", "", "metric to chart: performance, strength, endurance or recovery")
	logout := flag.Bool("logout", false, "forget the stored Google session and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Command line selections win over config and stored preferences
	if *period != "" {
		cfg.Display.Period = *period
	}
	if *metric != "" {
		cfg.Display.Metric = *metric
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   *htmlOut != "",
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	defer func() {
		err = multierr.Append(err, logCloser.Close())
	}()

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	if *logout {
		if err := db.DeleteAuth(); err != nil {
			return fmt.Errorf("removing stored session: %w", err)
		}
		fmt.Println("Signed out of Google Fit.")
		return nil
	}

	if *period != "" {
		if err := db.SetPreference(store.PrefPeriod, cfg.Display.Period); err != nil {
			return fmt.Errorf("saving period: %w", err)
		}
	}
	if *metric != "" {
		if err := db.SetPreference(store.PrefMetric, cfg.Display.Metric); err != nil {
			return fmt.Errorf("saving metric: %w", err)
		}
	}

	m := metrics.NewManager("fitdash", "dashboard", prometheus.NewRegistry())
	if cfg.Metrics.Textfile != "" {
		defer func() {
			err = multierr.Append(err, m.WriteTextfile(cfg.Metrics.Textfile))
		}()
	}

	// A missing client ID is reported by the session, not here
	clientID := ""
	if cfg.HasClientID() {
		clientID = cfg.Google.ClientID
	}

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     clientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", cfg.Auth.CallbackPort),
	})
	client := googlefit.NewClient(oauthCfg, db, cfg.Auth.CallbackPort)
	session := fitdata.NewSession(client, clientID, fitdata.WithMetrics(m))

	log.WithField("session", session.Status().SessionID).Info("fitdash starting")

	if *htmlOut != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return exportReport(ctx, session, cfg.Display, *htmlOut, *openReport)
	}

	app := tui.NewApp(session, db, cfg.Display, m)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}

	if errors.Is(err, config.ErrNoConfig) {
		if path == "" {
			if err := config.CreateExample(); err != nil {
				return nil, fmt.Errorf("creating example config: %w", err)
			}
			configDir, _ := config.GetConfigDir()
			fmt.Printf("Created an example config at:\n  %s/config.json\n\n", configDir)
			fmt.Println("Add your Google OAuth client ID to connect Google Fit.")
			fmt.Println("Create one at: https://console.cloud.google.com/apis/credentials")
			fmt.Println()
		}

		// Run on defaults; credentials may still come from the environment
		defaults := config.DefaultConfig()
		if err := defaults.ApplyEnv(); err != nil {
			return nil, err
		}
		if dir, err := config.GetConfigDir(); err == nil {
			defaults.Log.File = filepath.Join(dir, "fitdash.log")
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// exportReport connects with the stored session, if any, and writes the charts.
// Only the client load is time bounded, inside the session.
func exportReport(ctx context.Context, session *fitdata.Session, display config.DisplayConfig, path string, open bool) error {
	if err := session.Initialize(ctx); err != nil {
		log.Warnf("exporting sample data: %v", err)
	}

	period, err := insights.ParsePeriod(display.Period)
	if err != nil {
		return err
	}
	metric, err := insights.ParseMetric(display.Metric)
	if err != nil {
		return err
	}

	analysis, err := insights.Analyze(session.Status().Snapshot, period, metric, time.Now(), nil)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := charts.Report(f, analysis); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report file: %w", err)
	}

	fmt.Printf("Report written to %s\n", path)
	if open {
		return browser.OpenURL(path)
	}
	return nil
}
