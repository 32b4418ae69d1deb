package googlefit

import (
	"context"
	"errors"
)

// ErrNotSignedIn is returned by QueryAggregate before any authorization
var ErrNotSignedIn = errors.New("not signed in to Google Fit")

// Provider is the capability the dashboard needs from Google Fit. The real
// implementation is Client; Fake replaces it in tests.
type Provider interface {
	// LoadClient prepares the API client and restores a prior session if one exists.
	LoadClient(ctx context.Context) error
	// SignedIn reports whether an authorized session is available.
	SignedIn() bool
	// Authorize runs the interactive sign-in asking for scopes.
	Authorize(ctx context.Context, scopes []string) error
	// HasGrantedScopes reports whether every scope is covered by the current grant.
	HasGrantedScopes(scopes []string) bool
	// RequestGrant asks incrementally for scopes missing from the current grant.
	RequestGrant(ctx context.Context, scopes []string) error
	// QueryAggregate runs users.dataset.aggregate.
	QueryAggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error)
}
