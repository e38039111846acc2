package flowsrt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchSendsAPIKey(t *testing.T) {
	var gotKey, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(APIKeyHeader)
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x1a, 0x03, 'U', 'T', 'C'})
	}))
	defer srv.Close()

	c := NewClient("secret-key", 5*time.Second, WithUserAgent("flows-rt-monitor/test"))
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "flows-rt-monitor/test", gotAgent)
	assert.Equal(t, []byte{0x1a, 0x03, 'U', 'T', 'C'}, body)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", time.Second)
	_, err := c.Fetch(context.Background(), srv.URL)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Contains(t, te.Hint(), "API key")
	assert.Contains(t, te.Error(), "HTTP 401")
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient("key", time.Second)
	_, err := c.Fetch(context.Background(), url)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Unwrap())
}

func TestClient_EmptyURL(t *testing.T) {
	c := NewClient("key", time.Second)
	_, err := c.Fetch(context.Background(), "")

	var te *TransportError
	require.ErrorAs(t, err, &te)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("key", time.Second, WithBreaker(BreakerSettings{
		Name:                   "test",
		MaxConsecutiveFailures: 2,
		OpenTimeout:            time.Minute,
	}))

	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
	}

	_, err := c.Fetch(context.Background(), srv.URL)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "expected open breaker, got %v", err)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")
}

func TestEndpoint_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ep := NewClient("key", time.Second).Endpoint(srv.URL)
	assert.Equal(t, srv.URL, ep.URL())

	body, err := ep.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
