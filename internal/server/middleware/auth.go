package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vkarpovich/docvault/internal/server/handlers"
	"github.com/vkarpovich/docvault/internal/session"
	"github.com/vkarpovich/docvault/internal/storage"
)

// SessionMiddleware gates every protected route. A request without a
// live session is redirected to the login entry point, never given an
// opaque server error. A session whose user id no longer resolves is
// destroyed before the redirect (stale session).
func SessionMiddleware(logger *slog.Logger, sessions session.Store, users storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(handlers.SessionCookieName)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			sess, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, session.ErrSessionNotFound) {
					logger.Error("failed to load session", "error", err)
				}
				handlers.ClearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), sess.UserID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					// stale session: the referenced user is gone
					logger.Warn("session references missing user", "user_id", sess.UserID)
					if derr := sessions.Delete(r.Context(), sess.Token); derr != nil {
						logger.Error("failed to delete stale session", "error", derr)
					}
				} else {
					logger.Error("failed to load session user", "error", err)
				}
				handlers.ClearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}

			ctx := handlers.WithUser(r.Context(), user.ID, user.Username)

			logger.Debug("user authenticated", "user_id", user.ID, "username", user.Username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}
