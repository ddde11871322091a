package credhelper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/Adolar0042/warden/internal/credstore"
	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/secretstore"
)

func TestReadInputParsesUntilBlankLine(t *testing.T) {
	in := "protocol=https\nhost=example.test\n\nignored-after-blank=1\n"
	fields, err := ReadInput(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "https", fields["protocol"])
	assert.Equal(t, "example.test", fields["host"])
	assert.NotContains(t, fields, "ignored-after-blank")
}

func TestWriteOutputFormatsKeyValueLines(t *testing.T) {
	var buf strings.Builder
	err := WriteOutput(&buf, map[string]string{
		"protocol": "https",
		"host":     "example.test",
		"username": "alice",
		"password": "t1",
	})
	require.NoError(t, err)
	assert.Equal(t, "protocol=https\nhost=example.test\nusername=alice\npassword=t1\n\n", buf.String())
}

func newTestHandler(t *testing.T) (*Handler, string) {
	keyring.MockInit()
	path := t.TempDir() + "/state.toml"
	store := credstore.New(path, secretstore.New(), false)
	host := "example.test"
	p := provider.Provider{Host: host, ClientID: "abc", AuthURL: "http://127.0.0.1:9/auth", TokenURL: "http://127.0.0.1:9/token"}
	h := &Handler{
		Providers: map[string]provider.Provider{host: p},
		CredStore: store,
		IsTTY:     func() bool { return false },
	}
	return h, host
}

func TestGetWithValidTokenMakesNoFlowCall(t *testing.T) {
	h, host := newTestHandler(t)
	expires := time.Now().Add(time.Hour)
	require.NoError(t, h.CredStore.PutToken(context.Background(), host, "alice", &credstore.TokenBundle{AccessToken: "t1", ExpiresAt: &expires}))
	require.NoError(t, h.CredStore.SetActive(host, "alice"))

	out, ok, err := h.Get(context.Background(), map[string]string{"protocol": "https", "host": host})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, "t1", out["password"])
}

func TestGetUnknownHostDeclinesSilently(t *testing.T) {
	h, _ := newTestHandler(t)
	out, ok, err := h.Get(context.Background(), map[string]string{"protocol": "https", "host": "unknown.test"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestGetPathAwareUsernameSelection(t *testing.T) {
	h, host := newTestHandler(t)
	exp := time.Now().Add(time.Hour)
	require.NoError(t, h.CredStore.PutToken(context.Background(), host, "alice", &credstore.TokenBundle{AccessToken: "t-alice", ExpiresAt: &exp}))
	require.NoError(t, h.CredStore.PutToken(context.Background(), host, "bob", &credstore.TokenBundle{AccessToken: "t-bob", ExpiresAt: &exp}))
	require.NoError(t, h.CredStore.SetActive(host, "alice"))

	out, ok, err := h.Get(context.Background(), map[string]string{
		"protocol": "https", "host": host, "path": "bob-org/repo", "username": "bob",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bob", out["username"])
	assert.Equal(t, "t-bob", out["password"])
}

func TestGetDeclinesRefreshFailureWhenNonTTY(t *testing.T) {
	h, host := newTestHandler(t)
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, h.CredStore.PutToken(context.Background(), host, "alice", &credstore.TokenBundle{
		AccessToken: "stale", RefreshToken: "bad-refresh", ExpiresAt: &expired,
	}))
	require.NoError(t, h.CredStore.SetActive(host, "alice"))

	out, ok, err := h.Get(context.Background(), map[string]string{"protocol": "https", "host": host})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, out)
}
