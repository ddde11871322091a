package oauthflow

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// Refresh exchanges refreshToken for a new token bundle, per spec.md
// §4.4's refresh POST. On HTTP 4xx the caller should treat the refresh
// token as invalid and purge the stored bundle (spec.md §4.4, §7); this
// function surfaces that as a ProviderHTTP error for the caller to branch
// on via wardenerr.KindOf.
func Refresh(ctx context.Context, p provider.Provider, refreshToken string) (*credstore.TokenBundle, error) {
	cfg := oauth2Config(p)
	src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyHTTPErr(err)
	}
	return toBundle(tok), nil
}

// IsInvalidGrant reports whether err represents a rejected refresh token
// (HTTP 4xx from the token endpoint), per spec.md §4.4/§7's "refresh
// failures purge the token" recovery policy.
func IsInvalidGrant(err error) bool {
	var e *wardenerr.Error
	if !errors.As(err, &e) || e.Kind != wardenerr.ProviderHTTP {
		return false
	}
	return e.Status >= 400 && e.Status < 500
}
