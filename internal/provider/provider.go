// Package provider models OAuth provider configuration: the per-field merge
// across oauth.toml and Git config sources (C1), and the preset table that
// fills in default endpoints for known provider types (C3).
package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

// Type is a provider type, used to look up preset endpoints.
type Type string

const (
	TypeGitHub  Type = "github"
	TypeGitLab  Type = "gitlab"
	TypeForgejo Type = "forgejo"
	TypeGitea   Type = "gitea"
	TypeCustom  Type = "custom"
)

// Flow names the OAuth flow a provider prefers.
type Flow string

const (
	FlowAuto     Flow = "auto"
	FlowAuthCode Flow = "authcode"
	FlowDevice   Flow = "device"
)

// Provider is the effective, fully-resolved configuration for one host.
// Host is the canonical (lowercased) DNS authority used as the lookup key.
type Provider struct {
	Host          string
	Type          Type
	ClientID      string
	ClientSecret  string
	AuthURL       string
	TokenURL      string
	DeviceAuthURL string
	Scopes        []string
	PreferredFlow Flow
}

// Fields is the per-field raw form used while merging sources. Any field
// left as its zero value was not set by that source and does not override
// a previously-set field from a lower-precedence source.
type Fields struct {
	Type          *Type
	ClientID      *string
	ClientSecret  *string
	AuthURL       *string
	TokenURL      *string
	DeviceAuthURL *string
	Scopes        *[]string
	PreferredFlow *Flow
}

// Merge layers src's set fields onto dst, later (src) overriding earlier
// (dst) per field, per spec.md §4.1.
func Merge(dst Fields, src Fields) Fields {
	out := dst
	if src.Type != nil {
		out.Type = src.Type
	}
	if src.ClientID != nil {
		out.ClientID = src.ClientID
	}
	if src.ClientSecret != nil {
		out.ClientSecret = src.ClientSecret
	}
	if src.AuthURL != nil {
		out.AuthURL = src.AuthURL
	}
	if src.TokenURL != nil {
		out.TokenURL = src.TokenURL
	}
	if src.DeviceAuthURL != nil {
		out.DeviceAuthURL = src.DeviceAuthURL
	}
	if src.Scopes != nil {
		out.Scopes = src.Scopes
	}
	if src.PreferredFlow != nil {
		out.PreferredFlow = src.PreferredFlow
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Resolve turns merged Fields for a host into a Provider: applies preset
// defaults for unset endpoint/scope fields when Type is known, resolves
// relative endpoint URLs against https://<host>, and validates the result
// per spec.md §3's provider invariant.
func Resolve(host string, f Fields) (Provider, error) {
	p := Provider{
		Host:         host,
		ClientID:     deref(f.ClientID),
		ClientSecret: deref(f.ClientSecret),
		AuthURL:      deref(f.AuthURL),
		TokenURL:     deref(f.TokenURL),
		DeviceAuthURL: deref(f.DeviceAuthURL),
		PreferredFlow: FlowAuto,
	}
	if f.Type != nil {
		p.Type = *f.Type
	}
	if f.Scopes != nil {
		p.Scopes = *f.Scopes
	}
	if f.PreferredFlow != nil {
		p.PreferredFlow = *f.PreferredFlow
	}

	if p.Type != "" {
		if preset, ok := Presets[p.Type]; ok {
			if p.AuthURL == "" {
				p.AuthURL = preset.AuthURL
			}
			if p.TokenURL == "" {
				p.TokenURL = preset.TokenURL
			}
			if p.DeviceAuthURL == "" {
				p.DeviceAuthURL = preset.DeviceAuthURL
			}
			if len(p.Scopes) == 0 {
				p.Scopes = preset.Scopes
			}
		}
	}

	if p.ClientID == "" {
		return Provider{}, wardenerr.New(wardenerr.ConfigInvalid, fmt.Sprintf("provider %q: client_id is required", host))
	}
	if p.Type == TypeGitHub && p.ClientSecret == "" {
		return Provider{}, wardenerr.New(wardenerr.ConfigInvalid, fmt.Sprintf("provider %q: type=github requires client_secret", host))
	}

	var err error
	p.AuthURL, err = resolveURL(host, p.AuthURL)
	if err != nil {
		return Provider{}, wardenerr.Wrap(wardenerr.ConfigInvalid, fmt.Sprintf("provider %q: auth_url", host), err)
	}
	p.TokenURL, err = resolveURL(host, p.TokenURL)
	if err != nil {
		return Provider{}, wardenerr.Wrap(wardenerr.ConfigInvalid, fmt.Sprintf("provider %q: token_url", host), err)
	}
	if p.DeviceAuthURL != "" {
		p.DeviceAuthURL, err = resolveURL(host, p.DeviceAuthURL)
		if err != nil {
			return Provider{}, wardenerr.Wrap(wardenerr.ConfigInvalid, fmt.Sprintf("provider %q: device_auth_url", host), err)
		}
	}

	if p.PreferredFlow == FlowDevice && p.DeviceAuthURL == "" {
		return Provider{}, wardenerr.New(wardenerr.ConfigInvalid, fmt.Sprintf("provider %q: preferred_flow=device requires device_auth_url", host))
	}

	return p, nil
}

// resolveURL resolves a relative URL against https://<host>,
// leaving absolute URLs untouched. Returns "" unchanged for an empty input.
func resolveURL(host, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return raw, nil
	}
	base, err := url.Parse("https://" + host)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(u)
	if !resolved.IsAbs() {
		return "", fmt.Errorf("could not resolve %q to an absolute URL", raw)
	}
	return resolved.String(), nil
}

// CanonicalHost lowercases a DNS authority and strips a scheme if present,
// per C1's "canonical host key" rule.
func CanonicalHost(base string) string {
	b := strings.TrimSpace(base)
	if idx := strings.Index(b, "://"); idx >= 0 {
		b = b[idx+3:]
	}
	b = strings.TrimSuffix(b, "/")
	if idx := strings.IndexByte(b, '/'); idx >= 0 {
		b = b[:idx]
	}
	return strings.ToLower(b)
}

// ParseScopes splits a whitespace- or comma-separated scope list, per C1's
// Suffix=Scopes parsing rule.
func ParseScopes(raw string) []string {
	raw = strings.ReplaceAll(raw, ",", " ")
	fields := strings.Fields(raw)
	return fields
}
