package fitdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fitdash/internal/auth"
	"fitdash/internal/googlefit"
	"fitdash/internal/metrics"
)

// LoadTimeout bounds the provider client load during Initialize
const LoadTimeout = 10 * time.Second

// State is the session lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateDisconnected
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a copy of the session state handed to callers and subscribers.
// Connected tracks authorization separately from State: a failed fetch moves
// State to StateError but leaves Connected as it was.
type Status struct {
	SessionID string
	State     State
	Connected bool
	Err       *Error
	Snapshot  *Snapshot // nil until the first successful fetch
	LastFetch time.Time
}

// Indicator is the text of the connect button
func (s Status) Indicator() string {
	switch {
	case s.Connected:
		return "Connected to Google Fit"
	case s.Err != nil:
		return "Connection Error"
	default:
		return "Connect Google Fit"
	}
}

// Option configures a Session
type Option func(*Session)

// WithMetrics records operation results and fetch durations into m
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Session) { s.metrics = m }
}

// WithClock replaces time.Now for building the day window
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLoadTimeout overrides LoadTimeout
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Session) { s.loadTimeout = d }
}

// Session drives one Google Fit connection: load, authorize, fetch today's
// snapshot. Operations run one at a time; a call made while another is in
// flight waits for it.
type Session struct {
	provider    googlefit.Provider
	clientID    string
	scopes      []string
	metrics     *metrics.Manager
	now         func() time.Time
	loadTimeout time.Duration
	logger      *log.Entry

	opMu sync.Mutex

	mu         sync.Mutex
	status     Status
	loaded     bool
	authorized bool
	subs       map[int]func(Status)
	nextSub    int
}

// NewSession creates an uninitialized session. provider may be nil, in which
// case Initialize reports the provider as unavailable.
func NewSession(provider googlefit.Provider, clientID string, opts ...Option) *Session {
	id := uuid.NewString()
	s := &Session{
		provider:    provider,
		clientID:    clientID,
		scopes:      auth.Scopes,
		now:         time.Now,
		loadTimeout: LoadTimeout,
		logger:      log.WithField("session", id),
		status:      Status{SessionID: id, State: StateUninitialized},
		subs:        make(map[int]func(Status)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe registers fn to be called with every state change. Calls happen
// on the goroutine running the operation, outside the session's locks.
func (s *Session) Subscribe(fn func(Status)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Initialize loads the provider client and restores a previous sign-in. When
// already signed in it fetches right away. Failures are stored in Status and
// also returned.
func (s *Session) Initialize(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.initialize(ctx)
	s.observe("initialize", err)
	return err
}

func (s *Session) initialize(ctx context.Context) error {
	if s.provider == nil {
		return s.fail(newError(ErrProviderUnavailable, "Google API not loaded. Please check your internet connection.", nil), false)
	}
	if s.clientID == "" {
		return s.fail(newError(ErrConfiguration, "Google Client ID not configured", nil), false)
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	if err := s.provider.LoadClient(loadCtx); err != nil {
		msg := messageOr(err, "Failed to initialize Google Fit")
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			msg = "Google API load timeout"
		}
		return s.fail(newError(ErrProviderUnavailable, msg, err), true)
	}

	// a stored sign-in missing any scope counts as signed out
	signedIn := s.provider.SignedIn() && s.provider.HasGrantedScopes(s.scopes)
	s.update(func(st *Status) {
		s.loaded = true
		s.authorized = signedIn
		st.Connected = signedIn
		st.Err = nil
		st.State = StateDisconnected
		if signedIn {
			st.State = StateConnected
		}
	})
	s.logger.Debugf("google fit client loaded, signed in: %v", signedIn)

	if !signedIn {
		return nil
	}
	return s.fetch(ctx)
}

// Connect runs the interactive authorization for the fitness scopes, asks for
// any scope the user left out, then fetches. It may be called again to
// recover from an error.
func (s *Session) Connect(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.connect(ctx)
	s.observe("connect", err)
	return err
}

func (s *Session) connect(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if !loaded {
		return s.fail(newError(ErrProviderUnavailable, "Google API not properly initialized", nil), false)
	}

	if err := s.provider.Authorize(ctx, s.scopes); err != nil {
		return s.fail(newError(ErrAuth, messageOr(err, "Failed to connect to Google Fit"), err), true)
	}

	if !s.provider.HasGrantedScopes(s.scopes) {
		if err := s.provider.RequestGrant(ctx, s.scopes); err != nil {
			return s.fail(newError(ErrAuth, messageOr(err, "Failed to connect to Google Fit"), err), true)
		}
		if !s.provider.HasGrantedScopes(s.scopes) {
			return s.fail(newError(ErrAuth, "Google Fit permissions were not granted", nil), true)
		}
	}

	s.update(func(st *Status) {
		s.authorized = true
		st.Connected = true
		st.Err = nil
		st.State = StateConnected
	})
	s.logger.Info("connected to google fit")

	return s.fetch(ctx)
}

// Fetch queries today's aggregate and replaces the snapshot. On failure the
// previous snapshot is kept and Connected is left unchanged.
func (s *Session) Fetch(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.fetch(ctx)
	s.observe("fetch", err)
	return err
}

func (s *Session) fetch(ctx context.Context) error {
	s.mu.Lock()
	authorized := s.authorized
	s.mu.Unlock()

	if !authorized {
		return s.fail(newError(ErrAuth, "Connect Google Fit before fetching data", nil), false)
	}

	now := s.now()
	began := time.Now()
	resp, err := s.provider.QueryAggregate(ctx, BuildTodayRequest(now))
	if s.metrics != nil {
		s.metrics.HistFetchDuration.Observe(time.Since(began).Seconds())
	}
	if err != nil {
		kind := ErrUnknown
		if errors.Is(err, googlefit.ErrNotSignedIn) {
			kind = ErrAuth
		}
		return s.fail(newError(kind, "Failed to fetch fitness data", err), false)
	}

	snap, err := ParseAggregate(resp)
	if err != nil {
		var fe *Error
		if !errors.As(err, &fe) {
			fe = newError(ErrUnknown, "Failed to fetch fitness data", err)
		}
		return s.fail(fe, false)
	}

	s.update(func(st *Status) {
		st.Snapshot = &snap
		st.LastFetch = now
		st.Err = nil
		st.State = StateConnected
	})
	s.logger.WithFields(log.Fields{
		"steps":    snap.Steps,
		"calories": snap.Calories,
	}).Info("fetched fitness snapshot")

	return nil
}

// fail moves the session to StateError. disconnect also clears Connected.
func (s *Session) fail(e *Error, disconnect bool) error {
	s.update(func(st *Status) {
		st.State = StateError
		st.Err = e
		if disconnect {
			st.Connected = false
			s.authorized = false
		}
	})
	s.logger.WithError(e.Err).Errorf("google fit: %s", e.Message)
	return e
}

// update applies fn under the lock and notifies subscribers after releasing it
func (s *Session) update(fn func(st *Status)) {
	s.mu.Lock()
	fn(&s.status)
	status := s.status
	s.logger.Debugf("state %s, connected %v", status.State, status.Connected)
	subs := make([]func(Status), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(status)
	}
}

func (s *Session) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(operation, err)
	s.metrics.SetConnected(s.Status().Connected)
}
