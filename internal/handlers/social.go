package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"github.com/go-chi/chi/v5"
)

// SocialHandler provides follow and unfollow endpoints.
type SocialHandler struct {
	social *services.SocialService
}

func NewSocialHandler(social *services.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

// SocialRouter registers follow routes on the given router.
func SocialRouter(r chi.Router, handler *SocialHandler) {
	r.With(RequireAuth).Post("/follow", handler.Follow)
	r.With(RequireAuth).Delete("/follow", handler.Unfollow)
}

type FollowRequest struct {
	Username string `json:"username"`
}

func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	followee, ok := parseFollowRequest(w, r)
	if !ok {
		return
	}

	follow, err := h.social.Follow(r.Context(), session.Username, followee)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "already following this user")
			return
		}
		writeServiceError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusCreated, "now following "+followee, follow)
}

func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	followee, ok := parseFollowRequest(w, r)
	if !ok {
		return
	}

	if err := h.social.Unfollow(r.Context(), session.Username, followee); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "you are not following this user")
			return
		}
		writeServiceError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusOK, "unfollowed "+followee, nil)
}

func parseFollowRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return "", false
	}
	followee := strings.TrimSpace(req.Username)
	if followee == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return "", false
	}
	return followee, true
}
