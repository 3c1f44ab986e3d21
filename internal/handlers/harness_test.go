package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/storage"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
	"github.com/go-chi/chi/v5"
)

const testCookieName = "codelogs_session"

// testEnv wires the full router over in-memory repositories, mirroring
// the production wiring minus Postgres and object-storage backends.
type testEnv struct {
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	local, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	objects := storage.NewStorage(local)

	users := &memUsers{users: make(map[string]types.User)}
	sessions := &memSessions{sessions: make(map[string]types.Session)}
	follows := &memFollows{edges: make(map[string]types.Follow)}
	posts := &memPosts{posts: make(map[int]types.Post), follows: follows}
	comments := &memComments{comments: make(map[int]types.Comment)}
	votes := &memVotes{votes: make(map[string]bool)}

	userService := services.NewUserService(users)
	sessionService := services.NewSessionService(users, sessions, time.Hour, false)
	recoveryService := services.NewRecoveryService(users, "test-secret", 15*time.Minute)
	postService := services.NewPostService(posts, objects)
	socialService := services.NewSocialService(follows, users, posts, nil)
	engagementService := services.NewEngagementService(comments, votes, posts, nil)

	authHandler := NewAuthHandler(userService, sessionService, recoveryService, testCookieName, false)
	userHandler := NewUserHandler(userService, postService, socialService)
	postHandler := NewPostHandler(postService, socialService)
	socialHandler := NewSocialHandler(socialService)
	engagementHandler := NewEngagementHandler(engagementService)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(authHandler.LoadSession)
		AuthRouter(r, authHandler)
		UserRouter(r, userHandler)
		PostRouter(r, postHandler)
		SocialRouter(r, socialHandler)
		EngagementRouter(r, engagementHandler)
	})

	return &testEnv{router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doMultipart(t *testing.T, path string, fields map[string]string, fileField, filename string, fileData []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/users", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"phone":    "+447700900123",
		"dob":      "1990-05-01",
		"password": "secret123",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
}

func (e *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": "secret123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("login %s: no session cookie set", username)
	return nil
}

func (e *testEnv) signup(t *testing.T, username string) *http.Cookie {
	t.Helper()
	e.register(t, username)
	return e.login(t, username)
}

func (e *testEnv) createPost(t *testing.T, cookie *http.Cookie, title, language string) int {
	t.Helper()
	rec := e.doMultipart(t, "/contents", map[string]string{
		"title":    title,
		"code":     "print('hi')",
		"language": language,
	}, "", "", nil, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data types.Post `json:"data"`
	}
	decodeBody(t, rec, &resp)
	return resp.Data.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// envelope decodes the standard response envelope, leaving data raw.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	decodeBody(t, rec, &env)
	return env
}

// In-memory repositories backing the handler tests.

type memUsers struct {
	users  map[string]types.User
	nextID int
}

func (m *memUsers) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (types.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := m.users[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return types.User{}, store.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.Username] = user
	return user, nil
}

func (m *memUsers) Search(ctx context.Context, query string) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0)
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(u.Email), strings.ToLower(query)) {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memUsers) UpdateProfilePicture(ctx context.Context, username, key string) error {
	u, ok := m.users[username]
	if !ok {
		return store.ErrNotFound
	}
	u.ProfilePicture = key
	m.users[username] = u
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	for name, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			m.users[name] = u
			return nil
		}
	}
	return store.ErrNotFound
}

type memSessions struct {
	sessions map[string]types.Session
}

func (m *memSessions) Create(ctx context.Context, session types.Session) (types.Session, error) {
	session.CreatedAt = time.Now()
	m.sessions[session.Token] = session
	return session, nil
}

func (m *memSessions) Get(ctx context.Context, token string) (types.Session, error) {
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return types.Session{}, store.ErrNotFound
}

func (m *memSessions) Delete(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	s, ok := m.sessions[token]
	if !ok {
		return nil
	}
	s.ExpiresAt = expiresAt
	m.sessions[token] = s
	return nil
}

type memFollows struct {
	edges  map[string]types.Follow
	nextID int
}

func edgeKey(follower, followee string) string {
	return follower + "\x00" + followee
}

func (m *memFollows) Create(ctx context.Context, follow types.Follow) (types.Follow, error) {
	key := edgeKey(follow.Follower, follow.Followee)
	if _, ok := m.edges[key]; ok {
		return types.Follow{}, store.ErrConflict
	}
	m.nextID++
	follow.ID = m.nextID
	follow.CreatedAt = time.Now()
	m.edges[key] = follow
	return follow, nil
}

func (m *memFollows) Delete(ctx context.Context, follower, followee string) error {
	key := edgeKey(follower, followee)
	if _, ok := m.edges[key]; !ok {
		return store.ErrNotFound
	}
	delete(m.edges, key)
	return nil
}

func (m *memFollows) Exists(ctx context.Context, follower, followee string) (bool, error) {
	_, ok := m.edges[edgeKey(follower, followee)]
	return ok, nil
}

func (m *memFollows) Followers(ctx context.Context, username string) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0)
	for _, edge := range m.edges {
		if edge.Followee == username {
			out = append(out, types.UserSummary{Username: edge.Follower})
		}
	}
	return out, nil
}

func (m *memFollows) Following(ctx context.Context, username string) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0)
	for _, edge := range m.edges {
		if edge.Follower == username {
			out = append(out, types.UserSummary{Username: edge.Followee})
		}
	}
	return out, nil
}

func (m *memFollows) Counts(ctx context.Context, username string) (int, int, error) {
	var followers, following int
	for _, edge := range m.edges {
		if edge.Followee == username {
			followers++
		}
		if edge.Follower == username {
			following++
		}
	}
	return followers, following, nil
}

type memPosts struct {
	posts   map[int]types.Post
	follows *memFollows
	nextID  int
}

func (m *memPosts) Create(ctx context.Context, post types.Post) (types.Post, error) {
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	m.posts[post.ID] = post
	return post, nil
}

func (m *memPosts) Get(ctx context.Context, id int) (types.Post, error) {
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return types.Post{}, store.ErrNotFound
}

func (m *memPosts) sorted() []types.Post {
	out := make([]types.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memPosts) Search(ctx context.Context, query, language string) ([]types.Post, error) {
	out := make([]types.Post, 0)
	for _, p := range m.sorted() {
		if query != "" {
			haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Language)
			if !strings.Contains(haystack, strings.ToLower(query)) {
				continue
			}
		}
		if language != "" && !strings.EqualFold(p.Language, language) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPosts) ListByAuthor(ctx context.Context, author string, offset, limit int) ([]types.Post, int, error) {
	matched := make([]types.Post, 0)
	for _, p := range m.sorted() {
		if p.Author == author {
			matched = append(matched, p)
		}
	}
	return pagePosts(matched, offset, limit), len(matched), nil
}

func (m *memPosts) Feed(ctx context.Context, username string, offset, limit int) ([]types.Post, int, error) {
	matched := make([]types.Post, 0)
	for _, p := range m.sorted() {
		if ok, _ := m.follows.Exists(ctx, username, p.Author); ok {
			matched = append(matched, p)
		}
	}
	return pagePosts(matched, offset, limit), len(matched), nil
}

func (m *memPosts) CountByAuthor(ctx context.Context, author string) (int, error) {
	count := 0
	for _, p := range m.posts {
		if p.Author == author {
			count++
		}
	}
	return count, nil
}

func pagePosts(posts []types.Post, offset, limit int) []types.Post {
	if offset >= len(posts) {
		return []types.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

type memComments struct {
	comments map[int]types.Comment
	nextID   int
}

func (m *memComments) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	m.nextID++
	comment.ID = m.nextID
	comment.CreatedAt = time.Now()
	m.comments[comment.ID] = comment
	return comment, nil
}

func (m *memComments) Get(ctx context.Context, id int) (types.Comment, error) {
	if c, ok := m.comments[id]; ok {
		return c, nil
	}
	return types.Comment{}, store.ErrNotFound
}

func (m *memComments) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	out := make([]types.Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memComments) Delete(ctx context.Context, id int) error {
	if _, ok := m.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type memVotes struct {
	votes map[string]bool
}

func voteKey(postID int, username string) string {
	return fmt.Sprintf("%d\x00%s", postID, username)
}

func (m *memVotes) Apply(ctx context.Context, postID int, username string, isLike bool) (types.VoteResult, error) {
	key := voteKey(postID, username)
	current, ok := m.votes[key]
	switch {
	case !ok:
		m.votes[key] = isLike
		return types.VoteResult{Action: types.VoteCreated, IsLike: isLike}, nil
	case current == isLike:
		delete(m.votes, key)
		return types.VoteResult{Action: types.VoteRemoved, IsLike: isLike}, nil
	default:
		m.votes[key] = isLike
		return types.VoteResult{Action: types.VoteUpdated, IsLike: isLike}, nil
	}
}

func (m *memVotes) Counts(ctx context.Context, postID int, viewer string) (types.VoteCounts, error) {
	var counts types.VoteCounts
	for key, isLike := range m.votes {
		if !strings.HasPrefix(key, fmt.Sprintf("%d\x00", postID)) {
			continue
		}
		if isLike {
			counts.Likes++
		} else {
			counts.Dislikes++
		}
		if key == voteKey(postID, viewer) {
			v := isLike
			counts.ViewerVote = &v
		}
	}
	return counts, nil
}
