package geolocation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestOrigin(t *testing.T) {
	var (
		gotIP      string
		gotCountry string
	)
	h := RequestOrigin(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, ok := ClientIPFromContext(r.Context())
		require.True(t, ok)
		gotIP = ip
		headers, ok := HeadersFromContext(r.Context())
		require.True(t, ok)
		gotCountry = headers.Get("CF-IPCountry")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("CF-IPCountry", "PT")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", gotIP)
	assert.Equal(t, "PT", gotCountry)
}

func TestRequestOrigin_IgnoresProxyHeadersWhenUntrusted(t *testing.T) {
	var gotIP string
	h := RequestOrigin(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP, _ = ClientIPFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "198.51.100.2:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.2", gotIP)
}
