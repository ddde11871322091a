package oauthflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Adolar0042/warden/internal/provider"
	"github.com/Adolar0042/warden/internal/wardenerr"
)

func TestSelectFlowAutoPrefersDeviceWhenAvailable(t *testing.T) {
	p := provider.Provider{DeviceAuthURL: "https://example.test/device"}
	flow, err := SelectFlow(p, Options{})
	require.NoError(t, err)
	assert.Equal(t, provider.FlowDevice, flow)
}

func TestSelectFlowAutoFallsBackToAuthCode(t *testing.T) {
	p := provider.Provider{}
	flow, err := SelectFlow(p, Options{})
	require.NoError(t, err)
	assert.Equal(t, provider.FlowAuthCode, flow)
}

func TestSelectFlowDeviceWithoutEndpointFails(t *testing.T) {
	p := provider.Provider{}
	_, err := SelectFlow(p, Options{FlowHint: provider.FlowDevice})
	require.Error(t, err)
	kind, _ := wardenerr.KindOf(err)
	assert.Equal(t, wardenerr.FlowUnsupported, kind)
}

func TestSelectFlowForceDeviceOverridesHint(t *testing.T) {
	p := provider.Provider{DeviceAuthURL: "https://example.test/device", PreferredFlow: provider.FlowAuthCode}
	flow, err := SelectFlow(p, Options{ForceDevice: true})
	require.NoError(t, err)
	assert.Equal(t, provider.FlowDevice, flow)
}

// deviceFlowServer mocks a provider's device-auth and token endpoints,
// returning authorization_pending once before succeeding, mirroring
// spec.md §8 scenario 5.
func deviceFlowServer(t *testing.T) (*httptest.Server, *int) {
	polls := new(int)
	mux := http.NewServeMux()
	mux.HandleFunc("/device", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "devcode",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://example.test/verify",
			"expires_in":       600,
			"interval":         1,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		*polls++
		w.Header().Set("Content-Type", "application/json")
		if *polls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"error": "authorization_pending"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "t1",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	return httptest.NewServer(mux), polls
}

func TestRunDeviceFlowPollsUntilSuccess(t *testing.T) {
	srv, polls := deviceFlowServer(t)
	defer srv.Close()

	p := provider.Provider{
		ClientID:      "client",
		DeviceAuthURL: srv.URL + "/device",
		TokenURL:      srv.URL + "/token",
		PreferredFlow: provider.FlowDevice,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	bundle, err := Run(ctx, p, Options{})
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, "t1", bundle.AccessToken)
	assert.GreaterOrEqual(t, *polls, 2)
}

func TestRefreshSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "t2",
			"refresh_token": "r1",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := provider.Provider{ClientID: "client", TokenURL: srv.URL + "/token", AuthURL: srv.URL + "/auth"}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())

	bundle, err := Refresh(ctx, p, "stale-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "t2", bundle.AccessToken)
}

func TestRefreshInvalidGrant(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := provider.Provider{ClientID: "client", TokenURL: srv.URL + "/token", AuthURL: srv.URL + "/auth"}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())

	_, err := Refresh(ctx, p, "stale-refresh-token")
	require.Error(t, err)
	assert.True(t, IsInvalidGrant(err))
}
