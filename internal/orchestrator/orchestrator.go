// Package orchestrator implements the Command Orchestrator (C9): it wires
// the Configuration Resolver, Credential Store, OAuth Flow Engine, Git
// Helper Protocol, and Profile Resolver together and maps each CLI
// command onto the right combination of them, per spec.md §4.9.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/Adolar0042/warden/internal/config"
	"github.com/Adolar0042/warden/internal/credhelper"
	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/oauthflow"
	"github.com/Adolar0042/warden/internal/profile"
	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/secretstore"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

const defaultCredentialName = "oauth"

// App is the wired-up core, constructed once per process invocation and
// owning everything for the process lifetime, per spec.md §3's lifecycle
// note.
type App struct {
	Resolved     *config.Resolved
	CredStore    *credstore.Store
	Secrets      *secretstore.Store
	ProfileFile  *profile.File
	Profiles     *profile.Resolver
	Handler      *credhelper.Handler
	ForceDevice  bool
	IsTTY        func() bool
}

// New builds an App from its on-disk configuration. repoDir is the
// directory to treat as the current repository ("" uses the process's
// working directory).
func New(ctx context.Context, oauthTOMLPath, profilesTOMLPath, statePath, repoDir string, forceDevice bool, isTTY func() bool, warn func(string)) (*App, error) {
	resolved, err := config.Load(ctx, oauthTOMLPath, repoDir, warn)
	if err != nil {
		return nil, err
	}

	secrets := secretstore.New()
	store := credstore.New(statePath, secrets, resolved.Settings.OAuthOnly)

	profileFile, err := profile.Load(profilesTOMLPath, warn)
	if err != nil {
		return nil, err
	}
	profileResolver := profile.NewResolver(profileFile, repoDir)

	handler := &credhelper.Handler{
		Providers: resolved.Providers,
		CredStore: store,
		IsTTY:     isTTY,
		FlowOpts:  oauthflow.Options{ForceDevice: forceDevice, Port: resolved.Settings.Port},
	}

	return &App{
		Resolved:    resolved,
		CredStore:   store,
		Secrets:     secrets,
		ProfileFile: profileFile,
		Profiles:    profileResolver,
		Handler:     handler,
		ForceDevice: forceDevice,
		IsTTY:       isTTY,
	}, nil
}

func (a *App) resolveHost(hostname string) (string, provider.Provider, error) {
	if hostname != "" {
		host := provider.CanonicalHost(hostname)
		p, ok := a.Resolved.Providers[host]
		if !ok {
			return "", provider.Provider{}, wardenerr.New(wardenerr.ProviderUnknown, fmt.Sprintf("no provider configured for host %q", host))
		}
		return host, p, nil
	}
	if len(a.Resolved.Providers) == 1 {
		for host, p := range a.Resolved.Providers {
			return host, p, nil
		}
	}
	return "", provider.Provider{}, wardenerr.New(wardenerr.ProviderUnknown, "multiple providers configured; --hostname is required")
}

// Login runs login, per spec.md §6: interactive, optional hostname/name.
func (a *App) Login(ctx context.Context, hostname, name string) (host, credName string, err error) {
	host, p, err := a.resolveHost(hostname)
	if err != nil {
		return "", "", err
	}
	if name == "" {
		name = defaultCredentialName
	}

	opts := a.Handler.FlowOpts
	opts.CredentialName = name
	bundle, err := oauthflow.Run(ctx, p, opts)
	if err != nil {
		return "", "", err
	}
	if err := a.CredStore.PutToken(ctx, host, name, bundle); err != nil {
		return "", "", err
	}
	return host, name, nil
}

// Logout runs logout, per spec.md §6.
func (a *App) Logout(ctx context.Context, hostname, name string) (host, credName string, err error) {
	host, _, err = a.resolveHost(hostname)
	if err != nil {
		return "", "", err
	}
	if name == "" {
		name, err = a.CredStore.Active(host)
		if err != nil {
			return "", "", err
		}
	}
	if name == "" {
		return "", "", fmt.Errorf("no active credential for host %q; specify --name", host)
	}
	if err := a.CredStore.Remove(ctx, host, name); err != nil {
		return "", "", err
	}
	return host, name, nil
}

// Refresh runs refresh, per spec.md §6 and §4.4's refresh semantics. In
// oauth_only mode this is a documented no-op (SPEC_FULL.md §6).
func (a *App) Refresh(ctx context.Context, hostname, name string) (noop bool, err error) {
	if a.Resolved.Settings.OAuthOnly {
		return true, nil
	}
	host, p, err := a.resolveHost(hostname)
	if err != nil {
		return false, err
	}
	if name == "" {
		name, err = a.CredStore.Active(host)
		if err != nil {
			return false, err
		}
	}
	if name == "" {
		name = defaultCredentialName
	}

	bundle, err := a.CredStore.GetToken(ctx, host, name)
	if err != nil {
		return false, err
	}
	if bundle == nil || bundle.RefreshToken == "" {
		return false, fmt.Errorf("no refresh token stored for %s/%s; run login", host, name)
	}

	refreshed, err := oauthflow.Refresh(ctx, p, bundle.RefreshToken)
	if err != nil {
		if oauthflow.IsInvalidGrant(err) {
			_ = a.CredStore.PurgeToken(ctx, host, name)
		}
		return false, err
	}
	if err := a.CredStore.PutToken(ctx, host, name, refreshed); err != nil {
		return false, err
	}
	return false, nil
}

// Switch activates name when given; otherwise it toggles between exactly
// two credentials for a host and returns an error for any other count
// (SwitchCandidates lists the names for an interactive prompt), per
// spec.md §6.
func (a *App) Switch(ctx context.Context, hostname, name string) (host, activated string, err error) {
	host, _, err = a.resolveHost(hostname)
	if err != nil {
		return "", "", err
	}
	if name != "" {
		if err := a.CredStore.SetActive(host, name); err != nil {
			return "", "", err
		}
		return host, name, nil
	}

	names, err := a.CredStore.List(host)
	if err != nil {
		return "", "", err
	}
	if len(names) == 2 {
		active, err := a.CredStore.Active(host)
		if err != nil {
			return "", "", err
		}
		next := names[0]
		if active == names[0] {
			next = names[1]
		}
		if err := a.CredStore.SetActive(host, next); err != nil {
			return "", "", err
		}
		return host, next, nil
	}
	return host, "", fmt.Errorf("%d credentials for %q; specify --name", len(names), host)
}

// SwitchCandidates resolves hostname to a canonical host and returns its
// credential names, for callers that need to prompt the user to pick one
// when Switch reports more than two candidates.
func (a *App) SwitchCandidates(ctx context.Context, hostname string) (string, []string, error) {
	host, _, err := a.resolveHost(hostname)
	if err != nil {
		return "", nil, err
	}
	names, err := a.CredStore.List(host)
	if err != nil {
		return "", nil, err
	}
	return host, names, nil
}

// Activate sets the active credential for host without the toggle
// semantics of Switch, used once the caller (an interactive prompt) has
// already chosen a name.
func (a *App) Activate(host, name string) error {
	return a.CredStore.SetActive(host, name)
}

// StatusEntry is one line of `status`'s output, enriched per
// SPEC_FULL.md §5 with expiry and refresh-token presence.
type StatusEntry struct {
	Host      string
	Name      string
	Active    bool
	HasToken  bool
	Expired   bool
	HasRefresh bool
}

// Status reports providers, credential sets, active selection, and token
// presence, per spec.md §6.
func (a *App) Status(ctx context.Context) ([]StatusEntry, error) {
	var entries []StatusEntry
	for host := range a.Resolved.Providers {
		names, err := a.CredStore.List(host)
		if err != nil {
			return nil, err
		}
		active, err := a.CredStore.Active(host)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			bundle, err := a.CredStore.GetToken(ctx, host, name)
			if err != nil {
				return nil, err
			}
			entry := StatusEntry{Host: host, Name: name, Active: name == active}
			if bundle != nil {
				entry.HasToken = true
				entry.HasRefresh = bundle.RefreshToken != ""
				entry.Expired = bundle.ExpiresAt != nil && time.Now().After(*bundle.ExpiresAt)
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Get runs the credential helper `get` command.
func (a *App) Get(ctx context.Context, input map[string]string) (map[string]string, bool, error) {
	return a.Handler.Get(ctx, input)
}
