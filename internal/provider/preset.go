package provider

// Preset holds the default endpoints and scopes for a provider type, per
// spec.md §4.3. Fields are only applied when still unset after merging
// oauth.toml and Git config sources.
type Preset struct {
	AuthURL       string
	TokenURL      string
	DeviceAuthURL string
	Scopes        []string
}

// Presets is the static provider-type preset table, grounded on
// custodia-labs-sercha-cli/internal/core/services/provider_registry.go's
// GetOAuthEndpoints, generalized here to the four types spec.md §4.3 names.
var Presets = map[Type]Preset{
	TypeGitHub: {
		AuthURL:       "https://github.com/login/oauth/authorize",
		TokenURL:      "https://github.com/login/oauth/access_token",
		DeviceAuthURL: "https://github.com/login/device/code",
		Scopes:        []string{"repo", "read:user"},
	},
	TypeGitLab: {
		AuthURL:       "/oauth/authorize",
		TokenURL:      "/oauth/token",
		DeviceAuthURL: "/oauth/authorize_device",
		Scopes:        []string{"read_repository", "write_repository"},
	},
	TypeForgejo: {
		AuthURL:  "/login/oauth/authorize",
		TokenURL: "/login/oauth/access_token",
		Scopes:   []string{"repo"},
	},
	TypeGitea: {
		AuthURL:  "/login/oauth/authorize",
		TokenURL: "/login/oauth/access_token",
		Scopes:   []string{"repo"},
	},
}
