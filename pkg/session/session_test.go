package session

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func echoSessionID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IDFromContext(r.Context())
		_, _ = w.Write([]byte(id))
	})
}

func TestMiddleware_IssuesSessionCookie(t *testing.T) {
	store := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	h := Middleware(store, newTestLogger())(echoSessionID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Body.String())
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestMiddleware_ReusesExistingSession(t *testing.T) {
	store := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	h := Middleware(store, newTestLogger())(echoSessionID())

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	cookie := first.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(cookie)
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Empty(t, second.Result().Cookies())
}

func TestMiddleware_ReplacesTamperedCookie(t *testing.T) {
	store := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	h := Middleware(store, newTestLogger())(echoSessionID())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	_, err := uuid.Parse(rec.Body.String())
	require.NoError(t, err)
	assert.Len(t, rec.Result().Cookies(), 1)
}
