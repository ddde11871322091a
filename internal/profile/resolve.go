package profile

import (
	"context"
	"fmt"

	"github.com/Adolar0042/warden/internal/giturl"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// Resolver ties together profiles.toml, the URL Pattern Engine, and
// remote discovery to implement C8's apply/show/list operations.
type Resolver struct {
	File    *File
	Engine  *giturl.Engine
	RepoDir string
}

// NewResolver builds a Resolver from a loaded profiles.toml file.
func NewResolver(f *File, repoDir string) *Resolver {
	return &Resolver{File: f, Engine: giturl.NewEngine(f.Patterns), RepoDir: repoDir}
}

// Apply implements `apply(explicit_name?)` per spec.md §4.8: an explicit
// name loads and applies that profile directly; otherwise the current
// repository's remote is discovered, parsed, and matched against the
// rule set top-to-bottom.
func (r *Resolver) Apply(ctx context.Context, explicitName string) (string, Profile, error) {
	if explicitName != "" {
		p, ok := r.File.Profiles[explicitName]
		if !ok {
			return "", nil, wardenerr.New(wardenerr.ProfileUnknown, fmt.Sprintf("no profile named %q", explicitName))
		}
		return explicitName, p, Apply(ctx, r.RepoDir, p)
	}

	remoteName, profileName, p, err := r.resolveByRule()
	if err != nil {
		return "", nil, err
	}
	_ = remoteName
	return profileName, p, Apply(ctx, r.RepoDir, p)
}

// DryRun resolves the same way as Apply but returns the commands that
// would run instead of running them, for `apply --dry-run`.
func (r *Resolver) DryRun(explicitName string) (string, []string, error) {
	var profileName string
	var p Profile
	if explicitName != "" {
		var ok bool
		p, ok = r.File.Profiles[explicitName]
		if !ok {
			return "", nil, wardenerr.New(wardenerr.ProfileUnknown, fmt.Sprintf("no profile named %q", explicitName))
		}
		profileName = explicitName
	} else {
		_, name, profile, err := r.resolveByRule()
		if err != nil {
			return "", nil, err
		}
		profileName, p = name, profile
	}
	return profileName, DryRunCommands(p), nil
}

func (r *Resolver) resolveByRule() (remoteURL, profileName string, p Profile, err error) {
	remoteURL, err = DiscoverRemote(r.RepoDir)
	if err != nil {
		return "", "", nil, err
	}

	pr, _, ok := r.Engine.Parse(remoteURL)
	if !ok {
		return "", "", nil, wardenerr.New(wardenerr.RepoDetectionFailed, fmt.Sprintf("could not parse remote URL %q", remoteURL))
	}

	rule, ok := Match(r.File.Rules, pr)
	if !ok {
		return "", "", nil, wardenerr.New(wardenerr.NoMatchingRule, fmt.Sprintf("no rule matched remote %q", remoteURL))
	}

	p, ok = r.File.Profiles[rule.ProfileName]
	if !ok {
		return "", "", nil, wardenerr.New(wardenerr.ProfileUnknown, fmt.Sprintf("rule references unknown profile %q", rule.ProfileName))
	}
	return remoteURL, rule.ProfileName, p, nil
}

// Show returns the named profile as a sorted dotted-key listing, per
// spec.md §4.8's show(name).
func (r *Resolver) Show(name string) (Profile, error) {
	p, ok := r.File.Profiles[name]
	if !ok {
		return nil, wardenerr.New(wardenerr.ProfileUnknown, fmt.Sprintf("no profile named %q", name))
	}
	return p, nil
}

// ListEntry is one row of `list`'s output, per spec.md §4.8 and
// SPEC_FULL.md §5's placeholder enrichment for profiles missing identity
// fields.
type ListEntry struct {
	Name  string
	User  string
	Email string
}

// List enumerates all profiles with their user.name <user.email> if
// present, substituting "-" when absent (SPEC_FULL.md §5).
func (r *Resolver) List() []ListEntry {
	entries := make([]ListEntry, 0, len(r.File.Profiles))
	for name, p := range r.File.Profiles {
		entry := ListEntry{Name: name, User: "-", Email: "-"}
		if v, ok := p["user.name"]; ok && v != "" {
			entry.User = v
		}
		if v, ok := p["user.email"]; ok && v != "" {
			entry.Email = v
		}
		entries = append(entries, entry)
	}
	return entries
}
