package giturl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatternRejectsMissingRepoGroup(t *testing.T) {
	_, err := NewPattern("bad", `^(?P<owner>[^/]+)/(?P<name>[^/]+)$`, ParsedRemote{}, true, "")
	require.Error(t, err)
}

func TestBuiltinsParseTotal(t *testing.T) {
	engine := NewEngine(nil)
	inputs := []string{
		"git@example.test:acme/widgets.git",
		"git@example.test:acme/widgets",
		"https://example.test/acme/widgets.git",
		"ssh://git@example.test/acme/widgets",
		"example.test:acme/widgets",
		"acme/widgets",
	}
	for _, in := range inputs {
		pr, _, ok := engine.Parse(in)
		require.True(t, ok, "expected %q to match a built-in pattern", in)
		assert.NotEmpty(t, pr.Repo, "repo must be non-empty for %q", in)
	}
}

func TestRoundTripInferredRender(t *testing.T) {
	engine := NewEngine(nil)
	cases := map[string]string{
		"git@example.test:acme/widgets.git":    "ssh://git@example.test/acme/widgets.git",
		"https://example.test/acme/widgets.git": "https://example.test/acme/widgets.git",
		"acme/widgets":                          "https://github.com/acme/widgets.git",
	}
	for in, want := range cases {
		pr, pat, ok := engine.Parse(in)
		require.True(t, ok)
		got := pat.Render(pr)
		assert.Equal(t, want, got)
	}
}

func TestUserPatternsPrecedeBuiltins(t *testing.T) {
	custom, err := NewPattern("custom-shorthand", `^work/(?P<repo>[^/\s]+)$`, ParsedRemote{Scheme: "https", Host: "work.example.test", Owner: "eng"}, true, "")
	require.NoError(t, err)

	engine := NewEngine([]*Pattern{custom})
	pr, pat, ok := engine.Parse("work/widgets")
	require.True(t, ok)
	assert.Equal(t, "custom-shorthand", pat.Name)
	assert.Equal(t, "work.example.test", pr.Host)
	assert.Equal(t, "widgets", pr.Repo)
}
