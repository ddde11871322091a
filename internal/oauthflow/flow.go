// Package oauthflow implements the OAuth Flow Engine (C4): Authorization
// Code + PKCE via a locally bound loopback callback server, the Device
// Authorization Grant, and refresh-token renewal, built on
// golang.org/x/oauth2 (already a direct dependency of inovacc-clonr, the
// teacher, via its internal/core/oauth.go) rather than hand-rolled PKCE
// and polling as in custodia-labs-sercha-cli/internal/core/services/pkce.go.
package oauthflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// DefaultFlowTimeout is the total timeout for the auth-code and device
// flows, per spec.md §4.4.
const DefaultFlowTimeout = 300 * time.Second

// Options carries the per-invocation parameters for a flow run.
type Options struct {
	CredentialName string
	FlowHint       provider.Flow // "" means use provider.PreferredFlow
	ForceDevice    bool          // global --device flag, per spec.md §4.9
	Port           int           // 0 means OS-chosen ephemeral
	Timeout        time.Duration // 0 means DefaultFlowTimeout
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultFlowTimeout
}

// SelectFlow resolves the flow to run, per spec.md §4.4's selection rule:
// hint (or --device) wins over provider.PreferredFlow; "auto" picks device
// when available, else authcode; "device" without device_auth_url fails.
func SelectFlow(p provider.Provider, opts Options) (provider.Flow, error) {
	hint := opts.FlowHint
	if opts.ForceDevice {
		hint = provider.FlowDevice
	}
	if hint == "" {
		hint = p.PreferredFlow
	}
	if hint == "" {
		hint = provider.FlowAuto
	}

	switch hint {
	case provider.FlowAuto:
		if p.DeviceAuthURL != "" {
			return provider.FlowDevice, nil
		}
		return provider.FlowAuthCode, nil
	case provider.FlowDevice:
		if p.DeviceAuthURL == "" {
			return "", wardenerr.New(wardenerr.FlowUnsupported, "device flow requested but provider has no device_auth_url")
		}
		return provider.FlowDevice, nil
	case provider.FlowAuthCode:
		return provider.FlowAuthCode, nil
	default:
		return "", wardenerr.New(wardenerr.FlowUnsupported, fmt.Sprintf("unknown flow hint %q", hint))
	}
}

// oauth2Config builds the golang.org/x/oauth2 client config for p. The
// RedirectURL is filled in by the auth-code flow once the loopback port is
// known.
func oauth2Config(p provider.Provider) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Scopes:       p.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:       p.AuthURL,
			TokenURL:      p.TokenURL,
			DeviceAuthURL: p.DeviceAuthURL,
		},
	}
}

func toBundle(t *oauth2.Token) *credstore.TokenBundle {
	bundle := &credstore.TokenBundle{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "bearer",
	}
	if t.TokenType != "" {
		bundle.TokenType = strings.ToLower(t.TokenType)
	}
	if !t.Expiry.IsZero() {
		exp := t.Expiry.UTC()
		bundle.ExpiresAt = &exp
	}
	if scope, ok := t.Extra("scope").(string); ok {
		bundle.Scope = scope
	}
	return bundle
}

// Run executes the flow selected by opts against p and returns the
// resulting token bundle.
func Run(ctx context.Context, p provider.Provider, opts Options) (*credstore.TokenBundle, error) {
	flow, err := SelectFlow(p, opts)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	switch flow {
	case provider.FlowDevice:
		return runDevice(ctx, p, opts)
	default:
		return runAuthCode(ctx, p, opts)
	}
}

// classifyHTTPErr turns an *oauth2.RetrieveError into the matching
// wardenerr.Kind, per spec.md §4.4's error surface.
func classifyHTTPErr(err error) error {
	if re, ok := err.(*oauth2.RetrieveError); ok {
		switch re.ErrorCode {
		case "access_denied":
			return wardenerr.Wrap(wardenerr.AuthorizationDenied, "provider denied authorization", err)
		case "expired_token":
			return wardenerr.Wrap(wardenerr.FlowTimeout, "device code expired", err)
		}
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return wardenerr.HTTP(status, string(re.Body))
	}
	return wardenerr.Wrap(wardenerr.MalformedTokenResponse, "token exchange failed", err)
}
