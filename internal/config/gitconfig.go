package config

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

// entry is one parsed `credential.<base>.oauth<Suffix>` Git config line.
type entry struct {
	base   string
	suffix string
	value  string
}

// gitConfig wraps exec.Command invocations of the git binary, grounded on
// inovacc-clonr/internal/git/client.go's Command/AuthenticatedCommand
// exec-wrapping pattern. repoDir is used as the working directory for
// repo-local reads/writes; empty means the process's current directory.
type gitConfig struct {
	repoDir string
	gitPath string
}

func newGitConfig(repoDir string) *gitConfig {
	return &gitConfig{repoDir: repoDir, gitPath: "git"}
}

// SetLocalConfig writes `git config --local <key> <value>` in repoDir, for
// use by the Profile Resolver (C8) when applying a profile's key/value
// pairs to the current repository.
func SetLocalConfig(ctx context.Context, repoDir, key, value string) error {
	return newGitConfig(repoDir).setLocal(ctx, key, value)
}

func (g *gitConfig) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	if g.repoDir != "" {
		cmd.Dir = g.repoDir
	}
	return cmd
}

// getRegexp runs `git config <scope> --get-regexp <pattern>` and parses
// the oauth-suffix entries out of the result. A non-zero exit with no
// matches (git's documented behavior for --get-regexp) is not an error.
func (g *gitConfig) getRegexp(ctx context.Context, scope, pattern string) ([]entry, error) {
	cmd := g.command(ctx, "config", scope, "--get-regexp", pattern)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// git config --get-regexp exits non-zero both for "no matching
			// keys" and for "not inside a repository" (when scope is
			// --local); both are "no entries from this source" for us.
			return nil, nil
		}
		return nil, wardenerr.Wrap(wardenerr.ConfigInvalid, "git config "+scope+" --get-regexp", err)
	}

	const credentialPrefix = "credential."
	const oauthPrefix = "oauth"

	var entries []entry
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		key, value := line[:sp], line[sp+1:]

		if !strings.HasPrefix(key, credentialPrefix) {
			continue
		}
		rest := key[len(credentialPrefix):]
		idx := strings.LastIndex(rest, ".")
		if idx < 0 {
			continue
		}
		base, varName := rest[:idx], rest[idx+1:]
		if !strings.HasPrefix(strings.ToLower(varName), oauthPrefix) {
			continue
		}
		suffix := varName[len(oauthPrefix):]
		entries = append(entries, entry{base: base, suffix: suffix, value: value})
	}
	return entries, nil
}

// getSingle reads one effective scalar key (e.g. warden.port), relying on
// git's own local-over-global precedence rather than scanning scopes
// ourselves.
func (g *gitConfig) getSingle(ctx context.Context, key string) (string, bool, error) {
	cmd := g.command(ctx, "config", "--get", key)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, wardenerr.Wrap(wardenerr.ConfigInvalid, "git config --get "+key, err)
	}
	return strings.TrimSpace(string(out)), true, nil
}

// setLocal writes `git config --local <key> <value>` in repoDir, per
// spec.md §4.8's profile-application rule.
func (g *gitConfig) setLocal(ctx context.Context, key, value string) error {
	cmd := g.command(ctx, "config", "--local", key, value)
	if out, err := cmd.CombinedOutput(); err != nil {
		return wardenerr.Wrap(wardenerr.GitConfigWriteFailed, "git config --local "+key+": "+strings.TrimSpace(string(out)), err)
	}
	return nil
}
