package store

import "time"

// Auth represents the OAuth tokens for Google Fit access
type Auth struct {
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	Scopes       []string  `db:"scopes"` // stored space-separated
}

// Preference keys
const (
	PrefPeriod = "display.period"
	PrefMetric = "display.metric"
)
