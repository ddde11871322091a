package config

// tomlProvider is the [providers.<host>] shape in oauth.toml, per
// spec.md §3/§6.
type tomlProvider struct {
	Type          string   `toml:"type"`
	ClientID      string   `toml:"client_id"`
	ClientSecret  string   `toml:"client_secret"`
	AuthURL       string   `toml:"auth_url"`
	TokenURL      string   `toml:"token_url"`
	DeviceAuthURL string   `toml:"device_auth_url"`
	Scopes        []string `toml:"scopes"`
	PreferredFlow string   `toml:"preferred_flow"`
}

// oauthFile is the top-level shape of oauth.toml.
type oauthFile struct {
	Port      int                     `toml:"port"`
	OAuthOnly bool                    `toml:"oauth_only"`
	Providers map[string]tomlProvider `toml:"providers"`
}
