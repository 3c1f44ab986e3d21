package handlers

import (
	"net/http"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides user search, profile sub-resources and avatar
// upload.
type UserHandler struct {
	users  *services.UserService
	posts  *services.PostService
	social *services.SocialService
}

func NewUserHandler(users *services.UserService, posts *services.PostService, social *services.SocialService) *UserHandler {
	return &UserHandler{users: users, posts: posts, social: social}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, handler *UserHandler) {
	r.With(RequireAuth).Get("/users", handler.Search)
	r.Route("/users/{username}", func(r chi.Router) {
		r.Get("/profile", handler.Profile)
		r.Get("/posts", handler.Posts)
		r.Get("/followers", handler.Followers)
		r.Get("/following", handler.Following)
		r.Get("/stats", handler.Stats)
	})
	r.With(RequireAuth).Post("/upload/profile-picture", handler.UploadProfilePicture)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search users")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"users": users})
}

// profileView is a user profile with the viewer's follow state.
type profileView struct {
	types.UserSummary
	IsFollowing bool `json:"is_following"`
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	view := profileView{UserSummary: user.Summary()}
	if viewer := viewerFromContext(r.Context()); viewer != "" && viewer != username {
		// Follow state is auxiliary; a lookup failure degrades to false
		// rather than failing the profile.
		following, err := h.social.IsFollowing(r.Context(), viewer, username)
		if err == nil {
			view.IsFollowing = following
		}
	}
	writeData(w, http.StatusOK, view)
}

func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.users.GetByUsername(r.Context(), username); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	posts, total, err := h.posts.ListByAuthor(r.Context(), username, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeData(w, http.StatusOK, PostListData{
		Posts: posts,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if _, err := h.users.GetByUsername(r.Context(), username); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	users, err := h.social.Followers(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list followers")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if _, err := h.users.GetByUsername(r.Context(), username); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	users, err := h.social.Following(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list following")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.social.Stats(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}
	writeData(w, http.StatusOK, stats)
}

// UploadProfilePicture accepts a multipart image and stores it as the
// caller's avatar.
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(services.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "picture file is required")
		return
	}
	data, err := readFileLimited(file, services.MaxUploadBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.posts.StoreAvatar(r.Context(), services.UploadFile{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	if err := h.users.UpdateProfilePicture(r.Context(), session.Username, key); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusOK, "profile picture updated", map[string]string{"profile_picture": key})
}
