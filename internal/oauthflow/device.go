package oauthflow

import (
	"context"
	"fmt"
	"os"

	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/provider"
)

// runDevice performs the Device Authorization Grant, per spec.md §4.4.
// golang.org/x/oauth2's Config.DeviceAuth/DeviceAccessToken implement the
// RFC 8628 request and poll loop (authorization_pending/slow_down
// back-off, interval spacing) internally; this wrapper adapts its result
// and errors to warden's TokenBundle and error kinds.
func runDevice(ctx context.Context, p provider.Provider, opts Options) (*credstore.TokenBundle, error) {
	cfg := oauth2Config(p)

	da, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, classifyHTTPErr(err)
	}

	fmt.Fprintf(os.Stderr, "First, enter this code when prompted: %s\n", da.UserCode)
	if da.VerificationURIComplete != "" {
		fmt.Fprintf(os.Stderr, "Then open: %s\n", da.VerificationURIComplete)
	} else {
		fmt.Fprintf(os.Stderr, "Then open: %s\n", da.VerificationURI)
	}

	tok, err := cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, classifyHTTPErr(err)
	}
	return toBundle(tok), nil
}
