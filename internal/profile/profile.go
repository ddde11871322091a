// Package profile implements the Profile Resolver (C8): loading
// profiles.toml, matching rules against a parsed remote, and applying the
// chosen profile's key/value pairs as `git config --local` writes.
package profile

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Adolar0042/warden/internal/config"
	"github.com/Adolar0042/warden/internal/giturl"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// Profile is a named mapping from Git-config dotted keys to string
// values, per spec.md §3.
type Profile map[string]string

// Rule is a predicate over a parsed remote that selects a profile, per
// spec.md §3. Unset fields are wildcards.
type Rule struct {
	ProfileName string
	Host        *string
	Owner       *string
	Repo        *string
}

// File is the loaded, validated contents of profiles.toml.
type File struct {
	Profiles map[string]Profile
	Rules    []Rule
	Patterns []*giturl.Pattern
}

type tomlFile struct {
	Profiles map[string]map[string]string `toml:"profiles"`
	Rules    []tomlRule                    `toml:"rules"`
	Patterns []tomlPattern                  `toml:"patterns"`
}

type tomlRule struct {
	Profile struct {
		Name string `toml:"name"`
	} `toml:"profile"`
	Host  *string `toml:"host"`
	Owner *string `toml:"owner"`
	Repo  *string `toml:"repo"`
}

type tomlPattern struct {
	Name          string `toml:"name"`
	Regex         string `toml:"regex"`
	Infer         bool   `toml:"infer"`
	URL           string `toml:"url"`
	DefaultScheme string `toml:"default_scheme"`
	DefaultUser   string `toml:"default_user"`
	DefaultHost   string `toml:"default_host"`
	DefaultOwner  string `toml:"default_owner"`
	DefaultVCS    string `toml:"default_vcs"`
}

// Load parses and validates profiles.toml at path. Invalid patterns are
// skipped with a warning rather than aborting the file, mirroring C1's
// discard-with-warning policy (SPEC_FULL.md §5).
func Load(path string, warn func(string)) (*File, error) {
	if warn == nil {
		warn = func(string) {}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{Profiles: map[string]Profile{}}, nil
	}
	if err != nil {
		return nil, wardenerr.Wrap(wardenerr.ConfigInvalid, "read profiles.toml", err)
	}

	var tf tomlFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, wardenerr.Wrap(wardenerr.ConfigInvalid, "parse profiles.toml", err)
	}

	profiles := map[string]Profile{}
	for name, kv := range tf.Profiles {
		profiles[name] = Profile(kv)
	}

	rules := make([]Rule, 0, len(tf.Rules))
	for _, r := range tf.Rules {
		if r.Profile.Name == "" {
			warn("skipping rule with no profile.name")
			continue
		}
		rules = append(rules, Rule{ProfileName: r.Profile.Name, Host: r.Host, Owner: r.Owner, Repo: r.Repo})
	}

	patterns := make([]*giturl.Pattern, 0, len(tf.Patterns))
	for _, tp := range tf.Patterns {
		def := giturl.ParsedRemote{
			Scheme: tp.DefaultScheme,
			User:   tp.DefaultUser,
			Host:   tp.DefaultHost,
			Owner:  tp.DefaultOwner,
			VCS:    tp.DefaultVCS,
		}
		pat, err := giturl.NewPattern(tp.Name, tp.Regex, def, tp.Infer, tp.URL)
		if err != nil {
			warn(fmt.Sprintf("skipping pattern %q: %v", tp.Name, err))
			continue
		}
		patterns = append(patterns, pat)
	}

	return &File{Profiles: profiles, Rules: rules, Patterns: patterns}, nil
}

// Match walks rules top-to-bottom and returns the first one whose set
// fields all equal pr's corresponding field (case-insensitive host,
// exact-case owner/repo), per spec.md §4.8.
func Match(rules []Rule, pr giturl.ParsedRemote) (Rule, bool) {
	for _, r := range rules {
		if r.Host != nil && !strings.EqualFold(*r.Host, pr.Host) {
			continue
		}
		if r.Owner != nil && *r.Owner != pr.Owner {
			continue
		}
		if r.Repo != nil && *r.Repo != pr.Repo {
			continue
		}
		return r, true
	}
	return Rule{}, false
}

// Apply executes `git config --local <key> <value>` for each pair in p,
// in sorted key order for deterministic dry-run output, per spec.md §4.8.
// Previously-set keys not present in p are left untouched.
func Apply(ctx context.Context, repoDir string, p Profile) error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := config.SetLocalConfig(ctx, repoDir, k, p[k]); err != nil {
			return err
		}
	}
	return nil
}

// DryRunCommands returns the `git config --local <key> <value>` command
// lines Apply would execute, without running them, for `apply --dry-run`.
func DryRunCommands(p Profile) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cmds := make([]string, 0, len(keys))
	for _, k := range keys {
		cmds = append(cmds, fmt.Sprintf("git config --local %s %q", k, p[k]))
	}
	return cmds
}
