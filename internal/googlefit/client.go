package googlefit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"

	"fitdash/internal/auth"
	"fitdash/internal/store"
)

// DiscoveryURL is the Fitness API discovery document checked by LoadClient
const DiscoveryURL = "https://www.googleapis.com/discovery/v1/apis/fitness/v1/rest"

// TokenStore persists the OAuth session between runs
type TokenStore interface {
	GetAuth() (*store.Auth, error)
	SaveAuth(auth *store.Auth) error
	UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error
	DeleteAuth() error
}

type authenticateFunc func(ctx context.Context, cfg *oauth2.Config, port int, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

// Client is the Google Fit provider backed by oauth2 and the fitness/v1 API
type Client struct {
	oauthCfg     *oauth2.Config
	tokens       TokenStore
	callbackPort int
	httpClient   *http.Client
	discoveryURL string
	endpoint     string // overrides the API base path when set
	authenticate authenticateFunc
	limiter      *RateLimiter

	mu      sync.Mutex
	loaded  bool
	granted []string
	ts      *auth.TokenSource
	svc     *fitness.Service
}

// NewClient creates a Google Fit client. Nothing touches the network until LoadClient.
func NewClient(oauthCfg *oauth2.Config, tokens TokenStore, callbackPort int) *Client {
	return &Client{
		oauthCfg:     oauthCfg,
		tokens:       tokens,
		callbackPort: callbackPort,
		httpClient:   http.DefaultClient,
		discoveryURL: DiscoveryURL,
		authenticate: auth.Authenticate,
		limiter:      NewDefaultRateLimiter(),
	}
}

// LoadClient checks that the Fitness API is reachable and restores the
// session stored by a previous run, if any.
func (c *Client) LoadClient(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.discoveryURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("loading fitness discovery document: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fitness API not loaded properly: discovery returned %d", resp.StatusCode)
	}

	stored, err := c.tokens.GetAuth()
	if err != nil && !errors.Is(err, store.ErrNoAuth) {
		return fmt.Errorf("reading stored session: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = true
	if stored != nil {
		token := &oauth2.Token{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
			Expiry:       stored.ExpiresAt,
			TokenType:    "Bearer",
		}
		if err := c.setSessionLocked(token, stored.Scopes); err != nil {
			return err
		}
		log.Debugf("restored Google Fit session with %d scopes", len(stored.Scopes))
	}

	return nil
}

// SignedIn reports whether a token is available
func (c *Client) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ts != nil
}

// Authorize opens the account chooser and consent page for scopes
func (c *Client) Authorize(ctx context.Context, scopes []string) error {
	if !c.isLoaded() {
		return errors.New("client not loaded")
	}

	cfg := *c.oauthCfg
	cfg.Scopes = scopes

	token, err := c.authenticate(ctx, &cfg, c.callbackPort, auth.SelectAccount)
	if err != nil {
		return err
	}

	return c.saveSession(token, auth.GrantedScopes(token), scopes)
}

// HasGrantedScopes reports whether all scopes were granted
func (c *Client) HasGrantedScopes(scopes []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(auth.MissingScopes(c.granted, scopes)) == 0
}

// RequestGrant asks for the scopes that are still missing, keeping the ones
// already granted (incremental authorization).
func (c *Client) RequestGrant(ctx context.Context, scopes []string) error {
	c.mu.Lock()
	missing := auth.MissingScopes(c.granted, scopes)
	granted := append([]string(nil), c.granted...)
	c.mu.Unlock()

	if len(missing) == 0 {
		return nil
	}

	cfg := *c.oauthCfg
	cfg.Scopes = missing

	token, err := c.authenticate(ctx, &cfg, c.callbackPort, auth.IncludeGrantedScopes, auth.ConsentPrompt)
	if err != nil {
		return fmt.Errorf("requesting grant for %d scopes: %w", len(missing), err)
	}

	newScopes := auth.GrantedScopes(token)
	return c.saveSession(token, append(granted, auth.MissingScopes(granted, newScopes)...), scopes)
}

// QueryAggregate runs users.dataset.aggregate for req
func (c *Client) QueryAggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	c.mu.Lock()
	svc := c.svc
	c.mu.Unlock()

	if svc == nil {
		return nil, ErrNotSignedIn
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = UserMe
	}

	resp, err := svc.Users.Dataset.Aggregate(userID, toAPIRequest(req)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("aggregate query: %w", err)
	}

	return fromAPIResponse(resp), nil
}

func (c *Client) isLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// saveSession only persists a token carrying every required scope. A partial
// grant lives in memory for this run and any older stored token is dropped.
func (c *Client) saveSession(token *oauth2.Token, scopes, required []string) error {
	if len(auth.MissingScopes(scopes, required)) == 0 {
		if err := c.tokens.SaveAuth(&store.Auth{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    token.Expiry,
			Scopes:       scopes,
		}); err != nil {
			return fmt.Errorf("saving auth: %w", err)
		}
	} else if err := c.tokens.DeleteAuth(); err != nil {
		return fmt.Errorf("removing partial auth: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setSessionLocked(token, scopes)
}

func (c *Client) setSessionLocked(token *oauth2.Token, scopes []string) error {
	ts := auth.NewTokenSource(c.oauthCfg, token, func(newToken *oauth2.Token) error {
		err := c.tokens.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
		if errors.Is(err, store.ErrNoAuth) {
			// partial grants are never stored
			return nil
		}
		return err
	})

	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := fitness.NewService(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("creating fitness service: %w", err)
	}

	c.ts = ts
	c.svc = svc
	c.granted = scopes
	return nil
}

func toAPIRequest(req AggregateRequest) *fitness.AggregateRequest {
	out := &fitness.AggregateRequest{
		BucketByTime:    &fitness.BucketByTime{DurationMillis: req.BucketByTime.DurationMillis},
		StartTimeMillis: req.StartTimeMillis,
		EndTimeMillis:   req.EndTimeMillis,
	}
	for _, a := range req.AggregateBy {
		out.AggregateBy = append(out.AggregateBy, &fitness.AggregateBy{DataTypeName: a.DataTypeName})
	}
	return out
}

func fromAPIResponse(resp *fitness.AggregateResponse) *AggregateResponse {
	out := &AggregateResponse{}
	for _, b := range resp.Bucket {
		if b == nil {
			continue
		}
		bucket := Bucket{StartTimeMillis: b.StartTimeMillis, EndTimeMillis: b.EndTimeMillis}
		for _, ds := range b.Dataset {
			if ds == nil {
				continue
			}
			dataset := Dataset{DataSourceID: ds.DataSourceId}
			for _, p := range ds.Point {
				if p == nil {
					continue
				}
				point := Point{DataTypeName: p.DataTypeName}
				for _, v := range p.Value {
					if v == nil {
						continue
					}
					point.Value = append(point.Value, Value{IntVal: v.IntVal, FpVal: v.FpVal})
				}
				dataset.Point = append(dataset.Point, point)
			}
			bucket.Dataset = append(bucket.Dataset, dataset)
		}
		out.Bucket = append(out.Bucket, bucket)
	}
	return out
}
