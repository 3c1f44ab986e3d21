package handlers

import (
	"net/http"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
	"github.com/go-chi/chi/v5"
)

// PostHandler provides content creation, search and the feed.
type PostHandler struct {
	posts  *services.PostService
	social *services.SocialService
}

func NewPostHandler(posts *services.PostService, social *services.SocialService) *PostHandler {
	return &PostHandler{posts: posts, social: social}
}

// PostRouter registers content routes on the given router.
func PostRouter(r chi.Router, handler *PostHandler) {
	r.With(RequireAuth).Post("/contents", handler.Create)
	r.Get("/contents", handler.Search)
	r.With(RequireAuth).Get("/feed", handler.Feed)
}

// PostListData is the paginated post payload.
type PostListData struct {
	Posts []types.Post `json:"posts"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

// Create accepts a multipart form with title, description, code,
// language and an optional file.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(services.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := services.CreatePostInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Code:        r.FormValue("code"),
		Language:    r.FormValue("language"),
	}

	if file, header, err := r.FormFile("file"); err == nil {
		data, err := readFileLimited(file, services.MaxUploadBytes)
		_ = file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.File = &services.UploadFile{
			Filename: header.Filename,
			Data:     data,
		}
	}

	post, err := h.posts.Create(r.Context(), session.Username, input)
	if err != nil {
		writeServiceError(w, err, "post not found")
		return
	}
	writeMessage(w, http.StatusCreated, "post created", post)
}

// Search filters posts by free-text query and language tag; both
// parameters are optional.
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Search(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("language"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search posts")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"posts": posts})
}

const emptyFeedMessage = "follow some users to see their posts in your feed"

// Feed returns a page of posts from followed authors. Following nobody
// is not an error; it yields an empty page with a guidance message.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, total, err := h.posts.Feed(r.Context(), session.Username, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	data := PostListData{
		Posts: posts,
		Page:  page,
		Limit: limit,
		Total: total,
	}

	if total == 0 {
		following, err := h.social.Following(r.Context(), session.Username)
		if err == nil && len(following) == 0 {
			writeMessage(w, http.StatusOK, emptyFeedMessage, data)
			return
		}
	}
	writeData(w, http.StatusOK, data)
}
