package googlefit

import (
	"context"
	"sync"

	"fitdash/internal/auth"
)

// Fake is an in-memory Provider. Configure the exported fields before use;
// they are read under the fake's lock on every call.
type Fake struct {
	mu sync.Mutex

	// PriorSession makes LoadClient restore a signed-in session.
	PriorSession bool
	// PriorScopes lists the scopes of the restored session; nil means all of them.
	PriorScopes []string
	// GrantOnAuthorize lists the scopes Authorize grants; nil grants everything asked.
	GrantOnAuthorize []string

	LoadErr      error
	AuthorizeErr error
	GrantErr     error
	QueryErr     error
	Response     *AggregateResponse

	// LoadHook and QueryHook run inside LoadClient and QueryAggregate
	// before they return.
	LoadHook  func(ctx context.Context)
	QueryHook func(ctx context.Context)

	signedIn bool
	granted  []string
	requests []AggregateRequest
	calls    map[string]int
}

// NewFake returns a Fake answering every query with resp
func NewFake(resp *AggregateResponse) *Fake {
	return &Fake{Response: resp}
}

func (f *Fake) LoadClient(ctx context.Context) error {
	f.mu.Lock()
	f.count("LoadClient")
	hook := f.LoadHook
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.PriorSession {
		f.signedIn = true
		f.granted = append([]string(nil), auth.Scopes...)
		if f.PriorScopes != nil {
			f.granted = append([]string(nil), f.PriorScopes...)
		}
	}
	return nil
}

func (f *Fake) SignedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signedIn
}

func (f *Fake) Authorize(_ context.Context, scopes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("Authorize")

	if f.AuthorizeErr != nil {
		return f.AuthorizeErr
	}
	f.signedIn = true
	if f.GrantOnAuthorize != nil {
		f.granted = append([]string(nil), f.GrantOnAuthorize...)
	} else {
		f.granted = append([]string(nil), scopes...)
	}
	return nil
}

func (f *Fake) HasGrantedScopes(scopes []string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(auth.MissingScopes(f.granted, scopes)) == 0
}

func (f *Fake) RequestGrant(_ context.Context, scopes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("RequestGrant")

	if f.GrantErr != nil {
		return f.GrantErr
	}
	f.granted = append(f.granted, auth.MissingScopes(f.granted, scopes)...)
	return nil
}

func (f *Fake) QueryAggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	f.mu.Lock()
	f.count("QueryAggregate")
	f.requests = append(f.requests, req)
	hook, resp, err := f.QueryHook, f.Response, f.QueryErr
	signedIn := f.signedIn
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if !signedIn {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &AggregateResponse{}, nil
	}
	return resp, nil
}

// SetResponse swaps the canned aggregate response
func (f *Fake) SetResponse(resp *AggregateResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Response = resp
}

// SetQueryErr swaps the aggregate error
func (f *Fake) SetQueryErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.QueryErr = err
}

// Calls returns how many times method was invoked
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Requests returns the aggregate requests seen so far
func (f *Fake) Requests() []AggregateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AggregateRequest(nil), f.requests...)
}

func (f *Fake) count(method string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}

var _ Provider = (*Fake)(nil)
var _ Provider = (*Client)(nil)
