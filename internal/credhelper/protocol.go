// Package credhelper implements the Git Credential Helper Protocol (C7):
// reading/writing the stdin/stdout key=value line protocol and the
// get/store/erase business logic that ties together the Configuration
// Resolver, Credential Store, and OAuth Flow Engine. Grounded directly on
// inovacc-clonr/cmd/auth_git_credential.go's read-loop and output pattern,
// generalized to spec.md §4.7's multi-provider, multi-credential model.
package credhelper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/oauthflow"
	"github.com/Adolar0042/warden/internal/provider"
)

// DefaultSkew is the expiry lookahead that triggers a refresh, per
// spec.md §4.7 step 4.
const DefaultSkew = 60 * time.Second

// DefaultGetTimeout bounds a `get` invocation, per spec.md §4.7's
// process-wide timeout.
const DefaultGetTimeout = 600 * time.Second

const defaultCredentialName = "oauth"

// ReadInput reads `key=value` lines from r until a blank line, per
// spec.md §6's line protocol.
func ReadInput(r io.Reader) (map[string]string, error) {
	fields := map[string]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return fields, scanner.Err()
}

// WriteOutput writes `key=value` lines followed by a blank line, per
// spec.md §6.
func WriteOutput(w io.Writer, fields map[string]string) error {
	for _, k := range []string{"protocol", "host", "username", "password"} {
		if v, ok := fields[k]; ok {
			if _, err := fmt.Fprintf(w, "%s=%s\n", k, v); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}

// Handler implements get/store/erase against a resolved provider map and
// the Credential Store, per spec.md §4.7.
type Handler struct {
	Providers map[string]provider.Provider
	CredStore *credstore.Store
	FlowOpts  oauthflow.Options // ForceDevice/Port/Timeout defaults from C9's --device and config
	IsTTY     func() bool
	Skew      time.Duration
}

func (h *Handler) skew() time.Duration {
	if h.Skew > 0 {
		return h.Skew
	}
	return DefaultSkew
}

func (h *Handler) isTTY() bool {
	if h.IsTTY == nil {
		return false
	}
	return h.IsTTY()
}

// Get implements spec.md §4.7's `get` behavior. ok is false when the
// helper should stay silent (no matching provider, or a declined
// non-interactive re-login) so Git tries the next helper.
func (h *Handler) Get(ctx context.Context, input map[string]string) (output map[string]string, ok bool, err error) {
	host := input["host"]
	p, found := h.Providers[host]
	if !found {
		return nil, false, nil
	}

	name := input["username"]
	if name == "" {
		name, err = h.CredStore.Active(host)
		if err != nil {
			return nil, false, err
		}
	}
	if name == "" {
		name = defaultCredentialName
	}

	bundle, err := h.CredStore.GetToken(ctx, host, name)
	if err != nil {
		return nil, false, err
	}

	if bundle == nil {
		bundle, err = h.runFlow(ctx, p, name)
		if err != nil {
			return nil, false, err
		}
	} else if bundle.ExpiresAt != nil && time.Until(*bundle.ExpiresAt) <= h.skew() {
		if bundle.RefreshToken != "" {
			refreshed, refreshErr := oauthflow.Refresh(ctx, p, bundle.RefreshToken)
			if refreshErr == nil {
				bundle = refreshed
			} else {
				if !h.isTTY() {
					return nil, false, nil
				}
				bundle, err = h.runFlow(ctx, p, name)
				if err != nil {
					return nil, false, err
				}
			}
		} else {
			if !h.isTTY() {
				return nil, false, nil
			}
			bundle, err = h.runFlow(ctx, p, name)
			if err != nil {
				return nil, false, err
			}
		}
	}

	if err := h.CredStore.PutToken(ctx, host, name, bundle); err != nil {
		return nil, false, err
	}

	return map[string]string{
		"protocol": input["protocol"],
		"host":     host,
		"username": name,
		"password": bundle.AccessToken,
	}, true, nil
}

func (h *Handler) runFlow(ctx context.Context, p provider.Provider, name string) (*credstore.TokenBundle, error) {
	opts := h.FlowOpts
	opts.CredentialName = name
	return oauthflow.Run(ctx, p, opts)
}

// Store is a no-op for OAuth-issued credentials, per spec.md §4.7 (Git
// expects idempotent behavior from credential.helper store).
func (h *Handler) Store(_ context.Context, _ map[string]string) error {
	return nil
}

// Erase is a no-op for OAuth-issued credentials, per spec.md §4.7.
func (h *Handler) Erase(_ context.Context, _ map[string]string) error {
	return nil
}
