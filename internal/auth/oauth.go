package auth

import (
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/fitness/v1"
)

// Scopes required for the dashboard. They are always requested together.
var Scopes = []string{
	fitness.FitnessActivityReadScope,
	fitness.FitnessBodyReadScope,
	fitness.FitnessHeartRateReadScope,
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // rewritten to the callback listener address by Authenticate
}

// NewOAuthConfig creates an oauth2.Config for Google from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       Scopes,
	}
}

// Sign-in prompt options
var (
	SelectAccount        = oauth2.SetAuthURLParam("prompt", "select_account")
	IncludeGrantedScopes = oauth2.SetAuthURLParam("include_granted_scopes", "true")
	ConsentPrompt        = oauth2.SetAuthURLParam("prompt", "consent")
)

// GrantedScopes returns the scopes Google reported in the token response.
// Google sends them space-separated in the "scope" field.
func GrantedScopes(token *oauth2.Token) []string {
	if token == nil {
		return nil
	}
	if s, ok := token.Extra("scope").(string); ok {
		return strings.Fields(s)
	}
	return nil
}

// MissingScopes returns the entries of want that are not in granted
func MissingScopes(granted, want []string) []string {
	have := make(map[string]bool, len(granted))
	for _, s := range granted {
		have[s] = true
	}

	var missing []string
	for _, s := range want {
		if !have[s] {
			missing = append(missing, s)
		}
	}
	return missing
}
