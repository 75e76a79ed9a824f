package reverseproxy_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dyastin-0/llmgate/pkg/reverseproxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseProxy(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		wantPath string
	}{
		{name: "root target", base: "", path: "/v1/chat/completions", wantPath: "/v1/chat/completions"},
		{name: "prefixed target", base: "/litellm", path: "/v1/models", wantPath: "/litellm/v1/models"},
		{name: "prefixed target root", base: "/litellm/", path: "/", wantPath: "/litellm/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotForwardedHost, gotHost string
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotHost = r.Host
				gotForwardedHost = r.Header.Get("X-Forwarded-Host")
				w.Header().Set("X-Upstream", "litellm")
				w.WriteHeader(http.StatusAccepted)
				w.Write([]byte("Hello, from upstream"))
			}))
			defer upstream.Close()

			proxy, err := reverseproxy.New(upstream.URL + tt.base)
			require.NoError(t, err)

			proxyServer := httptest.NewServer(proxy)
			defer proxyServer.Close()

			req, err := http.NewRequest(http.MethodGet, proxyServer.URL+tt.path, nil)
			require.NoError(t, err)
			req.Host = "gate.stickball.biz"

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusAccepted, resp.StatusCode)
			assert.Equal(t, "litellm", resp.Header.Get("X-Upstream"))
			assert.Equal(t, "Hello, from upstream", string(body))
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, "gate.stickball.biz", gotForwardedHost)
			assert.Equal(t, upstream.Listener.Addr().String(), gotHost)
		})
	}
}

func TestNewInvalidTarget(t *testing.T) {
	for _, target := range []string{"", "localhost:4000", "://bad"} {
		_, err := reverseproxy.New(target)
		assert.Error(t, err, target)
	}
}
