package web

import (
	"net/http"

	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/logging"
)

// sessionMiddleware attaches the caller's session, creating and loading one
// when the cookie is missing or names an expired session.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		sess, created, err := s.registry.GetOrCreate(id)
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}

		ctx := logging.WithSessionID(r.Context(), sess.ID())
		ctx = core.ContextWithSession(ctx, sess)

		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Security.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			// A failed first load leaves an empty table and a notice.
			_ = sess.Load(ctx)
			logging.FromContext(ctx).Info("session created", "replaced", id != "")
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// session returns the request's session. sessionMiddleware guarantees one
// on every route that calls this.
func session(r *http.Request) (*core.Session, error) {
	sess, ok := core.SessionFromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}
