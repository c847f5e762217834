package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/utils/errutil"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// SessionCookieName is the cookie that identifies a browser session
const SessionCookieName = "session_id"

type sessionIDKey struct{}

// sessionIDFromContext returns the session bound to the request
func sessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}

// sessionMiddleware binds every request to a browser session, issuing a new
// session cookie when the request carries none or a malformed one. The
// request logger is tagged with the request and session IDs.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				sessionID = id.String()
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			cookie := &http.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secureCookie,
				SameSite: http.SameSiteLaxMode,
			}
			if s.cookieMaxAge > 0 {
				cookie.MaxAge = int(s.cookieMaxAge.Seconds())
			}
			http.SetCookie(w, cookie)
		}

		ctx := context.WithValue(r.Context(), sessionIDKey{}, sessionID)
		logger := logging.From(ctx).With(
			"request_id", middleware.GetReqID(ctx),
			"session_id", sessionID,
		)
		ctx = logging.With(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// panicRecoverer turns a handler panic into a 500 response and reports it
func panicRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := goerr.New("internal server error",
				goerr.V("panic", rec),
				goerr.V("path", r.URL.Path))
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
