package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides registration, session and recovery endpoints.
type AuthHandler struct {
	users        *services.UserService
	sessions     *services.SessionService
	recovery     *services.RecoveryService
	cookieName   string
	cookieSecure bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, sessions *services.SessionService, recovery *services.RecoveryService, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		recovery:     recovery,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/users", handler.Register)
	r.Get("/login", handler.SessionStatus)
	r.Post("/login", handler.Login)
	r.Delete("/login", handler.Logout)
	r.Post("/recover", handler.Recover)
	r.Post("/reset", handler.Reset)
}

// LoadSession resolves the session cookie into the request context when
// present. It never rejects; RequireAuth does the gating.
func (h *AuthHandler) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := h.sessions.Current(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextSessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests without a valid session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "you must be logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dob"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RecoverRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type ResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Password:    req.Password,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "username or email already registered")
			return
		}
		writeServiceError(w, err, "user not found")
		return
	}

	writeMessage(w, http.StatusCreated, "account created", user)
}

// SessionStatus reports whether the caller is logged in.
func (h *AuthHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeData(w, http.StatusOK, map[string]any{"logged_in": false})
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"logged_in": true,
		"username":  session.Username,
		"user_id":   session.UserID,
	})
}

// Login verifies credentials and issues a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	session, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "logged in", map[string]any{
		"username": session.Username,
		"user_id":  session.UserID,
	})
}

// Logout destroys the session; it succeeds even without one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "logged out", nil)
}

const recoverMessage = "if the account exists, a reset token has been issued"

// Recover issues a short-lived reset token for the account behind the
// email. The response message is the same whether or not the account
// exists.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.recovery.IssueToken(r.Context(), req.Email, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, services.ErrBadResetToken) {
			writeMessage(w, http.StatusOK, recoverMessage, nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeMessage(w, http.StatusOK, recoverMessage, map[string]string{"reset_token": token})
}

// Reset consumes a reset token and sets a new password.
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.recovery.Reset(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusOK, "password updated", nil)
}
