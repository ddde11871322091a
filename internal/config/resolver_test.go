package config

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a throwaway git repository and isolates global git
// config into a temp file via GIT_CONFIG_GLOBAL, so tests never touch the
// real user's configuration.
func initTestRepo(t *testing.T) string {
	dir := t.TempDir()
	run(t, dir, "git", "init", "-q")

	globalConfig := filepath.Join(t.TempDir(), "gitconfig")
	t.Setenv("GIT_CONFIG_GLOBAL", globalConfig)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	return dir
}

func run(t *testing.T, dir string, name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "command %v failed: %s", args, out)
}

func TestLoadMergesTOMLAndGitConfigPerField(t *testing.T) {
	repo := initTestRepo(t)

	toml := `
[providers."example.test"]
type = "forgejo"
client_id = "from-toml"
auth_url = "https://from-toml.example/auth"
`
	oauthPath := filepath.Join(t.TempDir(), "oauth.toml")
	require.NoError(t, os.WriteFile(oauthPath, []byte(toml), 0o600))

	run(t, repo, "git", "config", "--global", `credential.example.test.oauthClientId`, "from-global")
	run(t, repo, "git", "config", "--local", `credential.example.test.oauthClientId`, "from-local")

	resolved, err := Load(context.Background(), oauthPath, repo, nil)
	require.NoError(t, err)

	p, ok := resolved.Providers["example.test"]
	require.True(t, ok)
	assert.Equal(t, "from-local", p.ClientID, "repo-local config must win per-field")
	assert.Equal(t, "https://from-toml.example/auth", p.AuthURL, "unshadowed field from toml must survive")
}

func TestLoadAppliesPresetsForTypedProviders(t *testing.T) {
	repo := initTestRepo(t)

	toml := `
[providers."github.com"]
type = "github"
client_id = "abc"
client_secret = "shh"
`
	oauthPath := filepath.Join(t.TempDir(), "oauth.toml")
	require.NoError(t, os.WriteFile(oauthPath, []byte(toml), 0o600))

	resolved, err := Load(context.Background(), oauthPath, repo, nil)
	require.NoError(t, err)

	p := resolved.Providers["github.com"]
	assert.Equal(t, "https://github.com/login/oauth/authorize", p.AuthURL)
}

func TestLoadDiscardsGitHubProviderMissingClientSecret(t *testing.T) {
	repo := initTestRepo(t)

	toml := `
[providers."github.com"]
type = "github"
client_id = "abc"

[providers."example.test"]
type = "gitea"
client_id = "fallback"
`
	oauthPath := filepath.Join(t.TempDir(), "oauth.toml")
	require.NoError(t, os.WriteFile(oauthPath, []byte(toml), 0o600))

	var warnings []string
	resolved, err := Load(context.Background(), oauthPath, repo, func(msg string) {
		warnings = append(warnings, msg)
	})
	require.NoError(t, err)

	_, ok := resolved.Providers["github.com"]
	assert.False(t, ok, "type=github provider with no client_secret must be discarded")
	_, ok = resolved.Providers["example.test"]
	assert.True(t, ok, "other valid providers must still load")
	require.NotEmpty(t, warnings)
}

func TestLoadFailsFatallyWhenNoValidProviders(t *testing.T) {
	repo := initTestRepo(t)
	oauthPath := filepath.Join(t.TempDir(), "oauth.toml")

	_, err := Load(context.Background(), oauthPath, repo, nil)
	require.Error(t, err)
}

func TestLoadWardenSettingsFromGitConfig(t *testing.T) {
	repo := initTestRepo(t)

	toml := `
[providers."example.test"]
type = "gitea"
client_id = "abc"
`
	oauthPath := filepath.Join(t.TempDir(), "oauth.toml")
	require.NoError(t, os.WriteFile(oauthPath, []byte(toml), 0o600))

	run(t, repo, "git", "config", "--local", "warden.port", "54321")
	run(t, repo, "git", "config", "--local", "warden.oauth-only", "true")

	resolved, err := Load(context.Background(), oauthPath, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, 54321, resolved.Settings.Port)
	assert.True(t, resolved.Settings.OAuthOnly)
}
