// Package credstore implements the Credential Store (C6): per-host
// credential sets, the active selection, and their persistence to
// state.toml with atomic write-temp-then-rename semantics, backed by the
// Keyring Adapter for secret material. TOML shape and operations per
// spec.md §3 (HostState) and §4.6.
package credstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Adolar0042/warden/internal/secretstore"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

// TokenBundle is the OAuth token material for one credential, per
// spec.md §3. Never written to disk; lives only in the keyring (or, in
// oauth_only mode, only in memory for the duration of one invocation).
type TokenBundle struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	TokenType    string
	Scope        string
}

// hostState is the on-disk shape of one host's entry in state.toml.
type hostState struct {
	Credentials []string `toml:"credentials"`
	Active      string   `toml:"active,omitempty"`
}

type fileShape struct {
	Hosts map[string]hostState `toml:"hosts"`
}

// Store is the Credential Store. OAuthOnly disables state-file and
// keyring persistence per spec.md §4.6's oauth_only mode.
type Store struct {
	path      string
	secrets   *secretstore.Store
	oauthOnly bool
}

// New constructs a Store backed by the state file at path and the given
// Keyring Adapter.
func New(path string, secrets *secretstore.Store, oauthOnly bool) *Store {
	return &Store{path: path, secrets: secrets, oauthOnly: oauthOnly}
}

func (s *Store) load() (fileShape, error) {
	var fs fileShape
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		fs.Hosts = map[string]hostState{}
		return fs, nil
	}
	if err != nil {
		return fs, wardenerr.Wrap(wardenerr.ConfigInvalid, "read state.toml", err)
	}
	if err := toml.Unmarshal(data, &fs); err != nil {
		return fs, wardenerr.Wrap(wardenerr.ConfigInvalid, "parse state.toml", err)
	}
	if fs.Hosts == nil {
		fs.Hosts = map[string]hostState{}
	}
	return fs, nil
}

// save writes fs to the state file via write-temp-then-rename, per
// spec.md §5's atomicity requirement: concurrent writers may clobber but
// never corrupt.
func (s *Store) save(fs fileShape) error {
	data, err := toml.Marshal(fs)
	if err != nil {
		return wardenerr.Wrap(wardenerr.ConfigInvalid, "marshal state.toml", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return wardenerr.Wrap(wardenerr.ConfigInvalid, "create state dir", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return wardenerr.Wrap(wardenerr.ConfigInvalid, "create temp state file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wardenerr.Wrap(wardenerr.ConfigInvalid, "write temp state file", err)
	}
	if err := tmp.Close(); err != nil {
		return wardenerr.Wrap(wardenerr.ConfigInvalid, "close temp state file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return wardenerr.Wrap(wardenerr.ConfigInvalid, "rename temp state file", err)
	}
	return nil
}

// List returns the ordered credential names for host.
func (s *Store) List(host string) ([]string, error) {
	fs, err := s.load()
	if err != nil {
		return nil, err
	}
	return fs.Hosts[host].Credentials, nil
}

// Active returns the active credential name for host, or "" if none.
func (s *Store) Active(host string) (string, error) {
	fs, err := s.load()
	if err != nil {
		return "", err
	}
	return fs.Hosts[host].Active, nil
}

// Add appends name to host's credential set if absent. If it is the
// first credential for the host, it becomes active, per spec.md §4.6.
func (s *Store) Add(host, name string) error {
	if s.oauthOnly {
		return nil
	}
	fs, err := s.load()
	if err != nil {
		return err
	}
	hs := fs.Hosts[host]
	if !contains(hs.Credentials, name) {
		hs.Credentials = append(hs.Credentials, name)
		if hs.Active == "" {
			hs.Active = name
		}
	}
	fs.Hosts[host] = hs
	return s.save(fs)
}

// Remove deletes name from host's credential set, reassigns active if
// necessary, and cleans up the corresponding keyring entries.
func (s *Store) Remove(ctx context.Context, host, name string) error {
	if !s.oauthOnly {
		fs, err := s.load()
		if err != nil {
			return err
		}
		hs, ok := fs.Hosts[host]
		if ok {
			hs.Credentials = remove(hs.Credentials, name)
			if hs.Active == name {
				if len(hs.Credentials) > 0 {
					hs.Active = hs.Credentials[0]
				} else {
					hs.Active = ""
				}
			}
			if len(hs.Credentials) == 0 {
				delete(fs.Hosts, host)
			} else {
				fs.Hosts[host] = hs
			}
			if err := s.save(fs); err != nil {
				return err
			}
		}
	}
	if s.secrets != nil {
		if err := s.secrets.DeleteAll(ctx, host, name); err != nil {
			return err
		}
	}
	return nil
}

// SetActive makes name the active credential for host. name must already
// exist in the host's credential set.
func (s *Store) SetActive(host, name string) error {
	if s.oauthOnly {
		return nil
	}
	fs, err := s.load()
	if err != nil {
		return err
	}
	hs, ok := fs.Hosts[host]
	if !ok || !contains(hs.Credentials, name) {
		return fmt.Errorf("no credential %q for host %q", name, host)
	}
	hs.Active = name
	fs.Hosts[host] = hs
	return s.save(fs)
}

// GetToken reads the token bundle for (host, name) from the keyring. In
// oauth_only mode this always returns (nil, nil) — no persistent lookup.
func (s *Store) GetToken(ctx context.Context, host, name string) (*TokenBundle, error) {
	if s.oauthOnly {
		return nil, nil
	}
	access, err := s.secrets.Get(ctx, host, name, secretstore.FieldAccess)
	if err == secretstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	bundle := &TokenBundle{AccessToken: access, TokenType: "bearer"}

	if refresh, err := s.secrets.Get(ctx, host, name, secretstore.FieldRefresh); err == nil {
		bundle.RefreshToken = refresh
	} else if err != secretstore.ErrNotFound {
		return nil, err
	}

	if expRaw, err := s.secrets.Get(ctx, host, name, secretstore.FieldExpiresAt); err == nil && expRaw != "" {
		if t, parseErr := time.Parse(time.RFC3339, expRaw); parseErr == nil {
			bundle.ExpiresAt = &t
		}
	} else if err != nil && err != secretstore.ErrNotFound {
		return nil, err
	}

	if scope, err := s.secrets.Get(ctx, host, name, secretstore.FieldScope); err == nil {
		bundle.Scope = scope
	} else if err != secretstore.ErrNotFound {
		return nil, err
	}

	return bundle, nil
}

// PutToken writes bundle to the keyring and ensures (host, name) is
// present in the state file. In oauth_only mode this is a no-op: tokens
// flow through memory only for the duration of the invocation.
func (s *Store) PutToken(ctx context.Context, host, name string, bundle *TokenBundle) error {
	if s.oauthOnly {
		return nil
	}
	if err := s.Add(host, name); err != nil {
		return err
	}
	if err := s.secrets.Set(ctx, host, name, secretstore.FieldAccess, bundle.AccessToken); err != nil {
		return err
	}
	if bundle.RefreshToken != "" {
		if err := s.secrets.Set(ctx, host, name, secretstore.FieldRefresh, bundle.RefreshToken); err != nil {
			return err
		}
	}
	if bundle.ExpiresAt != nil {
		if err := s.secrets.Set(ctx, host, name, secretstore.FieldExpiresAt, bundle.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	if bundle.Scope != "" {
		if err := s.secrets.Set(ctx, host, name, secretstore.FieldScope, bundle.Scope); err != nil {
			return err
		}
	}
	return nil
}

// PurgeToken deletes only the keyring entries for (host, name), leaving
// the state file's credential list untouched, per spec.md §4.4's refresh
// policy: "the stored bundle is purged; caller decides whether to
// re-login" — the identity stays known, just without cached tokens.
func (s *Store) PurgeToken(ctx context.Context, host, name string) error {
	if s.oauthOnly {
		return nil
	}
	return s.secrets.DeleteAll(ctx, host, name)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func remove(ss []string, s string) []string {
	out := ss[:0:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
