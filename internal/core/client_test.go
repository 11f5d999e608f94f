package core

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{"http accepted", "http://localhost:3000", ""},
		{"https accepted", "https://api.example.com", ""},
		{"postgres scheme rejected", "postgres://localhost:5432/app", "base URL scheme must be http or https"},
		{"relative URL rejected", "localhost:3000/api", "base URL scheme must be http or https"},
		{"missing host rejected", "http://", "base URL has no host"},
		{"unparseable URL rejected", "://localhost", "parse base URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.baseURL)
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, c)
				return
			}
			require.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClient_SchemeErrorIsConfig(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewClient("http://localhost:3000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("http://localhost:3000")
	require.NoError(t, err)

	require.NotNil(t, c.httpClient)
	assert.Zero(t, c.httpClient.Timeout)
	assert.Empty(t, c.schema)
	assert.Nil(t, c.logger)
	assert.Nil(t, c.tracer)
	require.NotNil(t, c.sanitizer)
}

func TestClientOptions(t *testing.T) {
	t.Run("WithTimeout", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	})

	t.Run("WithSchema", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithSchema("tenant_a"))
		require.NoError(t, err)
		assert.Equal(t, "tenant_a", c.schema)
	})

	t.Run("WithAuthToken", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithAuthToken("tok-123"))
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-123", c.headers.Get("Authorization"))
	})

	t.Run("WithHeader", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithHeader("X-Client-Info", "pgrest-go/0.1"))
		require.NoError(t, err)
		assert.Equal(t, "pgrest-go/0.1", c.headers.Get("X-Client-Info"))
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		custom := &http.Client{Timeout: time.Second}
		c, err := NewClient("http://localhost:3000", WithHTTPClient(custom))
		require.NoError(t, err)
		assert.Same(t, custom, c.httpClient)
	})

	t.Run("WithHTTPClient ignores nil", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithHTTPClient(nil))
		require.NoError(t, err)
		require.NotNil(t, c.httpClient)
	})

	t.Run("WithLogger", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000",
			WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
		require.NoError(t, err)
		assert.NotNil(t, c.logger)
	})

	t.Run("WithLogger ignores nil", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithLogger(nil))
		require.NoError(t, err)
		assert.Nil(t, c.logger)
	})

	t.Run("WithSensitiveParams", func(t *testing.T) {
		c, err := NewClient("http://localhost:3000", WithSensitiveParams("session_key"))
		require.NoError(t, err)
		masked := c.sanitizer.MaskQuery("session_key=abc123&page=2")
		assert.Contains(t, masked, "session_key=***REDACTED***")
		assert.Contains(t, masked, "page=2")
	})
}

func TestClient_WithContextDerivation(t *testing.T) {
	parent, err := NewClient("http://localhost:3000", WithSchema("public"))
	require.NoError(t, err)

	type ctxKey string
	ctx := context.WithValue(context.Background(), ctxKey("req"), "r1")
	derived := parent.WithContext(ctx)

	assert.NotSame(t, parent, derived)
	assert.Nil(t, parent.ctx)
	assert.Equal(t, ctx, derived.ctx)

	// Everything else carries over.
	assert.Equal(t, parent.baseURL, derived.baseURL)
	assert.Equal(t, parent.schema, derived.schema)
}

func TestClient_SchemaDerivation(t *testing.T) {
	parent, err := NewClient("http://localhost:3000", WithSchema("public"))
	require.NoError(t, err)

	derived := parent.Schema("analytics")

	assert.Equal(t, "public", parent.schema)
	assert.Equal(t, "analytics", derived.schema)
	assert.Equal(t, parent.baseURL, derived.baseURL)
}

func TestClient_CloseLeavesClientUsable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	c.Close()
	c.Close()

	env, err := c.From("users").Exec()
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Nil(t, env.Error)
	assert.Equal(t, http.StatusOK, env.Status)
}
