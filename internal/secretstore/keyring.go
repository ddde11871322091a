// Package secretstore implements the Keyring Adapter (C5): the only
// component that touches the OS secret store. Grounded on
// inovacc-clonr/internal/core/keyring.go (timeout-bound goroutine wrapping
// of zalando/go-keyring calls) and
// muhammadbassiony-Rulem/internal/repository/credentials.go's
// round-trip availability check.
package secretstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

const (
	service = "warden"
	timeout = 5 * time.Second
)

// ErrNotFound is the non-error sentinel spec.md §4.5 requires for absent
// keys: callers branch on it, not on an error.
var ErrNotFound = keyring.ErrNotFound

// Field is a token-bundle field persisted independently in the keyring,
// per spec.md §4.5.
type Field string

const (
	FieldAccess    Field = "access"
	FieldRefresh   Field = "refresh"
	FieldExpiresAt Field = "expires_at"
	FieldScope     Field = "scope"
)

// Store is a thin, timeout-bound wrapper around the OS keyring.
type Store struct{}

// New returns a Store.
func New() *Store {
	return &Store{}
}

func key(host, name string, field Field) string {
	return fmt.Sprintf("warden:%s:%s:%s", host, name, field)
}

// Get reads a secret. Returns ErrNotFound if the key is absent.
func (s *Store) Get(ctx context.Context, host, name string, field Field) (string, error) {
	type result struct {
		val string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := keyring.Get(service, key(host, name, field))
		ch <- result{val, err}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case r := <-ch:
		if errors.Is(r.err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		if r.err != nil {
			return "", wardenerr.Wrap(wardenerr.KeyringUnavailable, "keyring get", r.err)
		}
		return r.val, nil
	case <-ctx.Done():
		return "", wardenerr.Wrap(wardenerr.KeyringUnavailable, "keyring get timed out", ctx.Err())
	}
}

// Set writes a secret, overwriting any existing value.
func (s *Store) Set(ctx context.Context, host, name string, field Field, value string) error {
	ch := make(chan error, 1)
	go func() {
		ch <- keyring.Set(service, key(host, name, field), value)
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case err := <-ch:
		if err != nil {
			return wardenerr.Wrap(wardenerr.KeyringUnavailable, "keyring set", err)
		}
		return nil
	case <-ctx.Done():
		return wardenerr.Wrap(wardenerr.KeyringUnavailable, "keyring set timed out", ctx.Err())
	}
}

// Delete removes a secret. A missing key is not an error.
func (s *Store) Delete(ctx context.Context, host, name string, field Field) error {
	ch := make(chan error, 1)
	go func() {
		ch <- keyring.Delete(service, key(host, name, field))
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case err := <-ch:
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return wardenerr.Wrap(wardenerr.KeyringUnavailable, "keyring delete", err)
		}
		return nil
	case <-ctx.Done():
		return wardenerr.Wrap(wardenerr.KeyringUnavailable, "keyring delete timed out", ctx.Err())
	}
}

// DeleteAll removes every field for (host, name), tolerating absent fields.
func (s *Store) DeleteAll(ctx context.Context, host, name string) error {
	for _, f := range []Field{FieldAccess, FieldRefresh, FieldExpiresAt, FieldScope} {
		if err := s.Delete(ctx, host, name, f); err != nil {
			return err
		}
	}
	return nil
}

// IsAvailable performs a set/get/delete round trip to verify the OS
// secret store is reachable, per Rulem's GetCredentialStoreStatus pattern.
func (s *Store) IsAvailable(ctx context.Context) bool {
	const probeHost = "\x00probe"
	const probeName = "\x00probe"
	probeValue := fmt.Sprintf("warden-probe-%d", time.Now().UnixNano())

	if err := s.Set(ctx, probeHost, probeName, FieldAccess, probeValue); err != nil {
		return false
	}
	defer s.Delete(ctx, probeHost, probeName, FieldAccess)

	got, err := s.Get(ctx, probeHost, probeName, FieldAccess)
	return err == nil && got == probeValue
}
