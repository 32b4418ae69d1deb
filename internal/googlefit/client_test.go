package googlefit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"fitdash/internal/auth"
	"fitdash/internal/store"
)

const aggregateBody = `{
  "bucket": [{
    "dataset": [
      {"dataSourceId": "` + SourceSteps + `", "point": [{"dataTypeName": "` + DataTypeStepCount + `", "value": [{"intVal": 8421}]}]},
      {"dataSourceId": "` + SourceDistance + `", "point": [{"value": [{"fpVal": 6123.4}]}]}
    ]
  }]
}`

type fitServer struct {
	*httptest.Server
	discoveryStatus atomic.Int32
	lastAggregate   atomic.Value // map[string]any
	lastAuthHeader  atomic.Value
}

func newFitServer(t *testing.T) *fitServer {
	t.Helper()

	fs := &fitServer{}
	fs.discoveryStatus.Store(http.StatusOK)
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/discovery"):
			w.WriteHeader(int(fs.discoveryStatus.Load()))
			w.Write([]byte(`{}`))
		case strings.HasSuffix(r.URL.Path, "/dataset:aggregate"):
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			fs.lastAggregate.Store(body)
			fs.lastAuthHeader.Store(r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(aggregateBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func newTestClient(t *testing.T, fs *fitServer, tokens TokenStore) *Client {
	t.Helper()

	c := NewClient(auth.NewOAuthConfig(auth.Config{ClientID: "client"}), tokens, 0)
	c.httpClient = fs.Client()
	c.discoveryURL = fs.URL + "/discovery/v1/apis/fitness/v1/rest"
	c.endpoint = fs.URL + "/fitness/v1/users/"
	return c
}

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func tokenWithScopes(access string, scopes ...string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	return tok.WithExtra(map[string]any{"scope": strings.Join(scopes, " ")})
}

func TestClient_LoadClient_NoPriorSession(t *testing.T) {
	fs := newFitServer(t)
	c := newTestClient(t, fs, openStore(t))

	require.NoError(t, c.LoadClient(context.Background()))
	assert.False(t, c.SignedIn())
	assert.False(t, c.HasGrantedScopes(auth.Scopes))

	_, err := c.QueryAggregate(context.Background(), AggregateRequest{})
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestClient_LoadClient_DiscoveryFailure(t *testing.T) {
	fs := newFitServer(t)
	fs.discoveryStatus.Store(http.StatusServiceUnavailable)
	c := newTestClient(t, fs, openStore(t))

	err := c.LoadClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not loaded properly")

	// not loaded: no sign-in possible
	assert.Error(t, c.Authorize(context.Background(), auth.Scopes))
}

func TestClient_LoadClient_RestoresSession(t *testing.T) {
	fs := newFitServer(t)
	s := openStore(t)
	require.NoError(t, s.SaveAuth(&store.Auth{
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		Scopes:       auth.Scopes,
	}))

	c := newTestClient(t, fs, s)
	require.NoError(t, c.LoadClient(context.Background()))
	assert.True(t, c.SignedIn())
	assert.True(t, c.HasGrantedScopes(auth.Scopes))

	resp, err := c.QueryAggregate(context.Background(), AggregateRequest{
		AggregateBy:     []AggregateBy{{DataTypeName: DataTypeStepCount}},
		BucketByTime:    BucketByTime{DurationMillis: 1000},
		StartTimeMillis: 1000,
		EndTimeMillis:   2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-access", fs.lastAuthHeader.Load())

	require.Len(t, resp.Bucket, 1)
	require.Len(t, resp.Bucket[0].Dataset, 2)
	assert.Equal(t, SourceSteps, resp.Bucket[0].Dataset[0].DataSourceID)
	assert.Equal(t, int64(8421), resp.Bucket[0].Dataset[0].Point[0].Value[0].IntVal)
	assert.InDelta(t, 6123.4, resp.Bucket[0].Dataset[1].Point[0].Value[0].FpVal, 1e-9)

	body := fs.lastAggregate.Load().(map[string]any)
	aggregateBy := body["aggregateBy"].([]any)
	assert.Equal(t, DataTypeStepCount, aggregateBy[0].(map[string]any)["dataTypeName"])
}

func TestClient_AuthorizeAndIncrementalGrant(t *testing.T) {
	fs := newFitServer(t)
	s := openStore(t)
	c := newTestClient(t, fs, s)
	require.NoError(t, c.LoadClient(context.Background()))

	var requested [][]string
	c.authenticate = func(_ context.Context, cfg *oauth2.Config, _ int, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
		requested = append(requested, cfg.Scopes)
		if len(requested) == 1 {
			// user unticks heart rate on the consent screen
			return tokenWithScopes("first", auth.Scopes[0], auth.Scopes[1]), nil
		}
		return tokenWithScopes("second", auth.Scopes...), nil
	}

	require.NoError(t, c.Authorize(context.Background(), auth.Scopes))
	assert.True(t, c.SignedIn())
	assert.False(t, c.HasGrantedScopes(auth.Scopes))

	// partial grant is not persisted
	_, err := s.GetAuth()
	assert.ErrorIs(t, err, store.ErrNoAuth)

	require.NoError(t, c.RequestGrant(context.Background(), auth.Scopes))
	assert.True(t, c.HasGrantedScopes(auth.Scopes))
	require.Len(t, requested, 2)
	assert.Equal(t, []string{auth.Scopes[2]}, requested[1])

	stored, err := s.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, "second", stored.AccessToken)
	assert.ElementsMatch(t, auth.Scopes, stored.Scopes)

	// nothing missing: no second consent round
	require.NoError(t, c.RequestGrant(context.Background(), auth.Scopes))
	assert.Len(t, requested, 2)
}

func TestClient_AuthorizeFailure(t *testing.T) {
	fs := newFitServer(t)
	s := openStore(t)
	c := newTestClient(t, fs, s)
	require.NoError(t, c.LoadClient(context.Background()))

	c.authenticate = func(context.Context, *oauth2.Config, int, ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
		return nil, errors.New("popup closed by user")
	}

	assert.EqualError(t, c.Authorize(context.Background(), auth.Scopes), "popup closed by user")
	assert.False(t, c.SignedIn())

	_, err := s.GetAuth()
	assert.ErrorIs(t, err, store.ErrNoAuth)
}

func TestClient_CancelledGrantIsNotRestored(t *testing.T) {
	fs := newFitServer(t)
	s := openStore(t)

	// an older full session from a previous run
	require.NoError(t, s.SaveAuth(&store.Auth{
		AccessToken: "old",
		ExpiresAt:   time.Now().Add(time.Hour),
		Scopes:      auth.Scopes,
	}))

	c := newTestClient(t, fs, s)
	require.NoError(t, c.LoadClient(context.Background()))

	c.authenticate = func(_ context.Context, cfg *oauth2.Config, _ int, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
		if len(cfg.Scopes) == len(auth.Scopes) {
			return tokenWithScopes("partial", auth.Scopes[0]), nil
		}
		return nil, errors.New("user cancelled grant")
	}

	require.NoError(t, c.Authorize(context.Background(), auth.Scopes))
	require.Error(t, c.RequestGrant(context.Background(), auth.Scopes))
	assert.False(t, c.HasGrantedScopes(auth.Scopes))

	_, err := s.GetAuth()
	assert.ErrorIs(t, err, store.ErrNoAuth)

	restarted := newTestClient(t, fs, s)
	require.NoError(t, restarted.LoadClient(context.Background()))
	assert.False(t, restarted.SignedIn())
	assert.False(t, restarted.HasGrantedScopes(auth.Scopes))
}
