package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/go-chi/chi/v5"
)

// EngagementHandler provides comment and vote endpoints.
type EngagementHandler struct {
	engagement *services.EngagementService
}

func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// EngagementRouter registers comment and vote routes on the given router.
func EngagementRouter(r chi.Router, handler *EngagementHandler) {
	r.Route("/posts/{postID}", func(r chi.Router) {
		r.With(RequireAuth).Post("/comments", handler.AddComment)
		r.Get("/comments", handler.ListComments)
		r.With(RequireAuth).Post("/like", handler.Vote)
		r.Get("/likes", handler.VoteCounts)
	})
	r.With(RequireAuth).Delete("/comments/{commentID}", handler.DeleteComment)
}

type CommentRequest struct {
	Text string `json:"text"`
}

type VoteRequest struct {
	IsLike bool `json:"is_like"`
}

func (h *EngagementHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	postID, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.engagement.AddComment(r.Context(), postID, session.Username, req.Text)
	if err != nil {
		writeServiceError(w, err, "post not found")
		return
	}
	writeMessage(w, http.StatusCreated, "comment added", comment)
}

func (h *EngagementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := h.engagement.ListComments(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err, "post not found")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *EngagementHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	commentID, err := parseIDParam(r, "commentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engagement.DeleteComment(r.Context(), commentID, session.Username); err != nil {
		writeServiceError(w, err, "comment not found")
		return
	}
	writeMessage(w, http.StatusOK, "comment deleted", nil)
}

func (h *EngagementHandler) Vote(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	postID, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.engagement.Vote(r.Context(), postID, session.Username, req.IsLike)
	if err != nil {
		writeServiceError(w, err, "post not found")
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *EngagementHandler) VoteCounts(w http.ResponseWriter, r *http.Request) {
	postID, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := h.engagement.VoteCounts(r.Context(), postID, viewerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "post not found")
		return
	}
	writeData(w, http.StatusOK, counts)
}

func parseIDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
