package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProxyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HTTP_PROXY", "http_proxy", "HTTPS_PROXY", "https_proxy", "NO_PROXY", "no_proxy", "REQUEST_METHOD"} {
		t.Setenv(key, "")
	}
}

func TestNewProxyFunc(t *testing.T) {
	clearProxyEnv(t)

	tests := []struct {
		name       string
		httpProxy  string
		httpsProxy string
		noProxy    string
		target     string
		want       string
	}{
		{"http uses http proxy", "http://proxy:8080", "", "", "http://api.example.com/v1", "http://proxy:8080"},
		{"https uses https proxy", "http://proxy:8080", "http://secure:8443", "", "https://api.example.com/v1", "http://secure:8443"},
		{"no proxy configured", "", "", "", "https://api.example.com/v1", ""},
		{"no_proxy bypasses", "", "http://secure:8443", "api.example.com", "https://api.example.com/v1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.target, nil)
			require.NoError(t, err)

			got, err := NewProxyFunc(tt.httpProxy, tt.httpsProxy, tt.noProxy)(req)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewProxyFunc_FallsBackToEnvironment(t *testing.T) {
	clearProxyEnv(t)
	t.Setenv("HTTPS_PROXY", "http://env-proxy:3128")

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/v1", nil)
	require.NoError(t, err)

	got, err := NewProxyFunc("", "", "")(req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "http://env-proxy:3128", got.String())
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient("", "", "")
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.Proxy)
}
