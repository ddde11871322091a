package profile

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adolar0042/warden/internal/giturl"
)

func initRepoWithRemote(t *testing.T, remoteURL string) string {
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "remote", "add", "origin", remoteURL)
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestLoadParsesRules(t *testing.T) {
	toml := `
[profiles.work]
"user.name" = "Alice Work"
"user.email" = "alice@work.test"

[profiles.default]
"user.name" = "Alice"
"user.email" = "alice@personal.test"

[[rules]]
profile.name = "work"
owner = "Company"

[[rules]]
profile.name = "default"
`
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o600))

	f, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, f.Rules, 2)
	assert.Equal(t, "work", f.Rules[0].ProfileName)
	require.NotNil(t, f.Rules[0].Owner)
	assert.Equal(t, "Company", *f.Rules[0].Owner)
	assert.Nil(t, f.Rules[1].Host)
}

func TestMatchFirstRuleWins(t *testing.T) {
	owner := "Company"
	rules := []Rule{
		{ProfileName: "work", Owner: &owner},
		{ProfileName: "default"},
	}
	pr := giturl.ParsedRemote{Host: "example.test", Owner: "Company", Repo: "proj"}
	r, ok := Match(rules, pr)
	require.True(t, ok)
	assert.Equal(t, "work", r.ProfileName)

	pr2 := giturl.ParsedRemote{Host: "example.test", Owner: "Other", Repo: "proj"}
	r2, ok := Match(rules, pr2)
	require.True(t, ok)
	assert.Equal(t, "default", r2.ProfileName)
}

func TestApplyWritesLocalGitConfig(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")

	p := Profile{"user.name": "Alice Work", "user.email": "alice@work.test"}
	require.NoError(t, Apply(context.Background(), dir, p))

	cmd := exec.Command("git", "config", "--local", "--get", "user.name")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Equal(t, "Alice Work", trim(out))
}

func trim(b []byte) string {
	s := string(b)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func TestResolverApplyByRule(t *testing.T) {
	dir := initRepoWithRemote(t, "git@example.test:Company/proj.git")

	f := &File{
		Profiles: map[string]Profile{
			"work":    {"user.name": "Alice Work", "user.email": "alice@work.test"},
			"default": {"user.name": "Alice", "user.email": "alice@personal.test"},
		},
		Rules: []Rule{
			{ProfileName: "work", Owner: strp("Company")},
			{ProfileName: "default"},
		},
	}
	r := NewResolver(f, dir)
	name, p, err := r.Apply(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "work", name)
	assert.Equal(t, "Alice Work", p["user.name"])
}

func strp(s string) *string { return &s }

func TestResolverListPlaceholdersForMissingFields(t *testing.T) {
	f := &File{Profiles: map[string]Profile{"bare": {"core.sshCommand": "ssh -i key"}}}
	r := NewResolver(f, "")
	entries := r.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "-", entries[0].User)
	assert.Equal(t, "-", entries[0].Email)
}

func TestResolverApplyNoMatchingRule(t *testing.T) {
	dir := initRepoWithRemote(t, "git@example.test:Other/proj.git")
	f := &File{
		Profiles: map[string]Profile{"work": {"user.name": "Alice"}},
		Rules:    []Rule{{ProfileName: "work", Owner: strp("Company")}},
	}
	r := NewResolver(f, dir)
	_, _, err := r.Apply(context.Background(), "")
	require.Error(t, err)
}
