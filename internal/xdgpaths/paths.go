// Package xdgpaths resolves warden's on-disk config and state locations
// under $XDG_CONFIG_HOME (falling back to ~/.config), grounded on
// muhammadbassiony-Rulem/internal/config/config.go's xdg.ConfigHome usage
// and catalyst-forge-libs/git's same dependency.
package xdgpaths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "warden"

// ConfigDir returns $XDG_CONFIG_HOME/warden (or ~/.config/warden), creating
// it if necessary.
func ConfigDir() (string, error) {
	dir := filepath.Join(xdg.ConfigHome, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// OAuthConfigPath returns the path to oauth.toml.
func OAuthConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, "oauth.toml"))
}

// ProfilesConfigPath returns the path to profiles.toml.
func ProfilesConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, "profiles.toml"))
}

// StatePath returns the path to state.toml.
func StatePath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, "state.toml"))
}
