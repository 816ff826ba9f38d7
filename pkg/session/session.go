// Package session issues the browser session id that keys per-visitor
// locality state.
package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// CookieName is the session cookie name.
	CookieName = "loci_session"
	idKey      = "sid"
)

type sessionIDKey struct{}

// NewCookieStore returns a signed cookie store. Secure should be set
// whenever the service is reached over TLS.
func NewCookieStore(hashKey []byte, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(hashKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Middleware makes sure every request carries a session id, issuing a new
// cookie when the request has none or the cookie does not verify.
func Middleware(store sessions.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, CookieName)
			if err != nil {
				logger.DebugContext(r.Context(), "discarding invalid session cookie", slog.Any("error", err))
			}

			id, _ := sess.Values[idKey].(string)
			if _, parseErr := uuid.Parse(id); parseErr != nil {
				id = uuid.NewString()
				sess.Values[idKey] = id
				if err := sess.Save(r, w); err != nil {
					logger.ErrorContext(r.Context(), "failed to save session", slog.Any("error", err))
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

// WithID attaches a session id to ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// IDFromContext returns the session id set by Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok && id != ""
}
