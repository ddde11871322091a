package oauthflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/cli/browser"
	"golang.org/x/oauth2"

	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// randomState generates the 16-byte random state parameter required by
// spec.md §4.4 step 2.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// runAuthCode performs the Authorization Code + PKCE flow, per
// spec.md §4.4. PKCE verifier/challenge generation is delegated to
// golang.org/x/oauth2 (GenerateVerifier/S256ChallengeOption) rather than
// hand-rolled as in custodia-labs-sercha-cli/internal/core/services/pkce.go.
func runAuthCode(ctx context.Context, p provider.Provider, opts Options) (*credstore.TokenBundle, error) {
	state, err := randomState()
	if err != nil {
		return nil, wardenerr.Wrap(wardenerr.BindFailed, "generate state", err)
	}

	cs, err := newCallbackServer(opts.Port, state)
	if err != nil {
		return nil, err
	}
	defer cs.Close()
	cs.Serve()

	cfg := oauth2Config(p)
	cfg.RedirectURL = cs.RedirectURI()

	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintf(os.Stderr, "Open this URL to authorize warden:\n\n  %s\n\n", authURL)
	_ = browser.OpenURL(authURL) // best-effort, per spec.md §4.4 step 4

	res, err := cs.WaitForCode(ctx)
	if err != nil {
		return nil, err
	}
	if res.err != nil {
		return nil, wardenerr.Wrap(wardenerr.AuthorizationDenied, "provider denied authorization", res.err)
	}
	if res.state != state {
		return nil, wardenerr.New(wardenerr.StateMismatch, "OAuth callback state did not match")
	}
	if res.code == "" {
		return nil, wardenerr.New(wardenerr.MalformedTokenResponse, "OAuth callback did not include a code")
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, classifyHTTPErr(err)
	}
	return toBundle(tok), nil
}
