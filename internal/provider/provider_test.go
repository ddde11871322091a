package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

func strp(s string) *string { return &s }
func typep(t Type) *Type    { return &t }

func TestMergePerField(t *testing.T) {
	dst := Fields{ClientID: strp("from-toml"), AuthURL: strp("https://from-toml/auth")}
	src := Fields{ClientID: strp("from-git-config")}

	merged := Merge(dst, src)
	assert.Equal(t, "from-git-config", *merged.ClientID)
	assert.Equal(t, "https://from-toml/auth", *merged.AuthURL)
}

func TestResolveAppliesPresetWhenUnset(t *testing.T) {
	p, err := Resolve("github.com", Fields{
		Type:         typep(TypeGitHub),
		ClientID:     strp("abc123"),
		ClientSecret: strp("shh"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/login/oauth/authorize", p.AuthURL)
	assert.Equal(t, "https://github.com/login/oauth/access_token", p.TokenURL)
	assert.Equal(t, "https://github.com/login/device/code", p.DeviceAuthURL)
}

func TestResolveGitHubRequiresClientSecret(t *testing.T) {
	_, err := Resolve("github.com", Fields{
		Type:     typep(TypeGitHub),
		ClientID: strp("abc123"),
	})
	require.Error(t, err)
	kind, ok := wardenerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, wardenerr.ConfigInvalid, kind)
}

func TestResolveRelativeEndpoint(t *testing.T) {
	p, err := Resolve("gitlab.example.test", Fields{
		Type:     typep(TypeGitLab),
		ClientID: strp("abc123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.example.test/oauth/authorize", p.AuthURL)
	assert.Equal(t, "https://gitlab.example.test/oauth/token", p.TokenURL)
}

func TestResolveMissingClientIDIsConfigInvalid(t *testing.T) {
	_, err := Resolve("example.test", Fields{Type: typep(TypeGitea)})
	require.Error(t, err)
	kind, ok := wardenerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, wardenerr.ConfigInvalid, kind)
}

func TestResolveDeviceFlowRequiresDeviceAuthURL(t *testing.T) {
	flow := FlowDevice
	_, err := Resolve("example.test", Fields{
		Type:          typep(TypeForgejo),
		ClientID:      strp("abc123"),
		PreferredFlow: &flow,
	})
	require.Error(t, err)
	kind, _ := wardenerr.KindOf(err)
	assert.Equal(t, wardenerr.ConfigInvalid, kind)
}

func TestCanonicalHost(t *testing.T) {
	assert.Equal(t, "example.test", CanonicalHost("HTTPS://Example.Test/"))
	assert.Equal(t, "example.test", CanonicalHost("example.test"))
	assert.Equal(t, "example.test", CanonicalHost("example.test/path/ignored"))
}

func TestParseScopes(t *testing.T) {
	assert.Equal(t, []string{"repo", "read:user"}, ParseScopes("repo, read:user"))
	assert.Equal(t, []string{"repo", "read:user"}, ParseScopes("repo read:user"))
}
