// Package config implements the Configuration Resolver (C1): merging
// oauth.toml, global Git config, and repo-local Git config into an
// effective provider map, per spec.md §4.1. Git config is read via
// exec-wrapped invocations of the git binary, grounded on
// inovacc-clonr/internal/git/client.go's Command wrapping; oauth.toml is
// parsed with github.com/pelletier/go-toml/v2 (promoted from the
// teacher's indirect dependency).
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// Settings holds the global (non-per-provider) options spec.md §4.1/§6
// names: port, oauth_only, and the process-only force_device flag (which
// is a CLI flag, not part of this struct — see cmd's --device handling).
type Settings struct {
	Port      int
	OAuthOnly bool
}

// Resolved is the output of Load: the effective provider map keyed by
// canonical host, plus global settings.
type Resolved struct {
	Providers map[string]provider.Provider
	Settings  Settings
}

// Load computes the effective configuration per spec.md §4.1's three-tier
// precedence (oauth.toml → global git config → repo-local git config,
// later overriding earlier per field). repoDir is the directory to treat
// as the current repository for local config; "" uses the process's
// working directory. warn receives a message for each discarded provider
// or invalid setting, per the "skipped with a warning" recovery policy.
func Load(ctx context.Context, oauthTOMLPath, repoDir string, warn func(string)) (*Resolved, error) {
	if warn == nil {
		warn = func(string) {}
	}

	merged := map[string]provider.Fields{}
	settings := Settings{}

	tf, err := loadOAuthTOML(oauthTOMLPath)
	if err != nil {
		return nil, err
	}
	if tf != nil {
		settings.Port = tf.Port
		settings.OAuthOnly = tf.OAuthOnly
		for host, tp := range tf.Providers {
			canon := provider.CanonicalHost(host)
			merged[canon] = provider.Merge(merged[canon], fieldsFromTOML(tp))
		}
	}

	gc := newGitConfig(repoDir)

	const pattern = `^credential\..*\.oauth`
	globalEntries, err := gc.getRegexp(ctx, "--global", pattern)
	if err != nil {
		return nil, err
	}
	applyEntries(merged, globalEntries)

	localEntries, err := gc.getRegexp(ctx, "--local", pattern)
	if err != nil {
		return nil, err
	}
	applyEntries(merged, localEntries)

	if port, ok, err := gc.getSingle(ctx, "warden.port"); err == nil && ok {
		if n, convErr := strconv.Atoi(port); convErr == nil {
			settings.Port = n
		} else {
			warn(fmt.Sprintf("warden.port %q is not a valid integer, ignoring", port))
		}
	} else if err != nil {
		return nil, err
	}
	if oauthOnly, ok, err := gc.getSingle(ctx, "warden.oauth-only"); err == nil && ok {
		settings.OAuthOnly = oauthOnly == "true" || oauthOnly == "1"
	} else if err != nil {
		return nil, err
	}

	providers := map[string]provider.Provider{}
	for host, fields := range merged {
		p, resolveErr := provider.Resolve(host, fields)
		if resolveErr != nil {
			warn(fmt.Sprintf("discarding provider %q: %v", host, resolveErr))
			continue
		}
		providers[host] = p
	}

	if len(providers) == 0 {
		return nil, wardenerr.New(wardenerr.ConfigInvalid, "no valid providers configured")
	}

	return &Resolved{Providers: providers, Settings: settings}, nil
}

func loadOAuthTOML(path string) (*oauthFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wardenerr.Wrap(wardenerr.ConfigInvalid, "read oauth.toml", err)
	}
	var f oauthFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, wardenerr.Wrap(wardenerr.ConfigInvalid, "parse oauth.toml", err)
	}
	return &f, nil
}

func fieldsFromTOML(tp tomlProvider) provider.Fields {
	var f provider.Fields
	if tp.Type != "" {
		t := provider.Type(tp.Type)
		f.Type = &t
	}
	if tp.ClientID != "" {
		f.ClientID = &tp.ClientID
	}
	if tp.ClientSecret != "" {
		f.ClientSecret = &tp.ClientSecret
	}
	if tp.AuthURL != "" {
		f.AuthURL = &tp.AuthURL
	}
	if tp.TokenURL != "" {
		f.TokenURL = &tp.TokenURL
	}
	if tp.DeviceAuthURL != "" {
		f.DeviceAuthURL = &tp.DeviceAuthURL
	}
	if len(tp.Scopes) > 0 {
		f.Scopes = &tp.Scopes
	}
	if tp.PreferredFlow != "" {
		pf := provider.Flow(tp.PreferredFlow)
		f.PreferredFlow = &pf
	}
	return f
}

// applyEntries merges a batch of `credential.<base>.oauth<Suffix>` Git
// config entries into merged, per spec.md §4.1: <base> may carry a
// scheme (https:// assumed if absent); the canonical host key is its
// lowercased DNS authority; suffix matching is case-insensitive.
func applyEntries(merged map[string]provider.Fields, entries []entry) {
	for _, e := range entries {
		host := provider.CanonicalHost(e.base)
		f := merged[host]
		applySuffix(&f, e.suffix, e.value)
		merged[host] = f
	}
}

func applySuffix(f *provider.Fields, suffix, value string) {
	switch strings.ToLower(suffix) {
	case "type":
		t := provider.Type(strings.ToLower(value))
		f.Type = &t
	case "clientid":
		f.ClientID = &value
	case "clientsecret":
		f.ClientSecret = &value
	case "authurl":
		f.AuthURL = &value
	case "tokenurl":
		f.TokenURL = &value
	case "deviceauthurl":
		f.DeviceAuthURL = &value
	case "preferredflow":
		pf := provider.Flow(strings.ToLower(value))
		f.PreferredFlow = &pf
	case "scopes":
		scopes := provider.ParseScopes(value)
		f.Scopes = &scopes
	}
}
