package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vkarpovich/docvault/internal/auth"
	"github.com/vkarpovich/docvault/internal/session"
	"github.com/vkarpovich/docvault/internal/storage"
)

// AuthHandler serves login, logout, profile and the root redirect.
type AuthHandler struct {
	logger     *slog.Logger
	auth       *auth.Service
	sessions   session.Store
	users      storage.UserStorage
	sessionTTL time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, authService *auth.Service, sessions session.Store, users storage.UserStorage, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		logger:     logger,
		auth:       authService,
		sessions:   sessions,
		users:      users,
		sessionTTL: sessionTTL,
	}
}

// Index handles GET /
// Redirects to the dashboard when a live session exists, otherwise to login.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h.hasLiveSession(r) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginPage handles GET /login
// There is no HTML frontend in this service; the response tells the
// caller how to authenticate. An already-authenticated client is sent
// to the dashboard.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.hasLiveSession(r) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	sendJSON(h.logger, w, map[string]string{
		"message": "POST username and password form fields to /login",
	}, http.StatusOK)
}

// Login handles POST /login
// Verifies credentials and establishes a server-side session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		sendError(h.logger, w, "invalid form body", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.auth.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WarnContext(ctx, "login failed", slog.String("username", username))
			sendError(h.logger, w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify credentials", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sess, err := session.New(user.ID, h.sessionTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Save(ctx, sess); err != nil {
		h.logger.ErrorContext(ctx, "failed to save session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	SetSessionCookie(w, sess.Token, sess.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout handles GET /logout
// Destroys the server-side session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.sessions.Delete(ctx, cookie.Value); err != nil {
			h.logger.WarnContext(ctx, "failed to delete session", slog.Any("error", err))
		}
	}

	ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Profile handles GET /profile (authenticated)
// Returns the current user.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "user id not found in context")
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, user, http.StatusOK)
}

// hasLiveSession reports whether the request carries a valid session
// cookie. Used by the unauthenticated routes that redirect logged-in
// clients to the dashboard.
func (h *AuthHandler) hasLiveSession(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}

	_, err = h.sessions.Get(r.Context(), cookie.Value)
	return err == nil
}
