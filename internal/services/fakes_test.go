package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// In-memory repository fakes mirroring the store semantics, including
// the unique-index conflicts the SQL layer reports.

type fakeUserRepo struct {
	users  map[string]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return types.User{}, store.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) Search(ctx context.Context, query string) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0)
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(u.Email), strings.ToLower(query)) {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUserRepo) UpdateProfilePicture(ctx context.Context, username, key string) error {
	u, ok := f.users[username]
	if !ok {
		return store.ErrNotFound
	}
	u.ProfilePicture = key
	f.users[username] = u
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	for name, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			f.users[name] = u
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeSessionRepo struct {
	sessions map[string]types.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]types.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session types.Session) (types.Session, error) {
	session.CreatedAt = time.Now()
	f.sessions[session.Token] = session
	return session, nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, token string) (types.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return types.Session{}, store.ErrNotFound
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionRepo) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	s, ok := f.sessions[token]
	if !ok {
		return nil
	}
	s.ExpiresAt = expiresAt
	f.sessions[token] = s
	return nil
}

type followKey struct {
	follower string
	followee string
}

type fakeFollowRepo struct {
	edges  map[followKey]types.Follow
	nextID int
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[followKey]types.Follow)}
}

func (f *fakeFollowRepo) Create(ctx context.Context, follow types.Follow) (types.Follow, error) {
	key := followKey{follow.Follower, follow.Followee}
	if _, ok := f.edges[key]; ok {
		return types.Follow{}, store.ErrConflict
	}
	f.nextID++
	follow.ID = f.nextID
	follow.CreatedAt = time.Now()
	f.edges[key] = follow
	return follow, nil
}

func (f *fakeFollowRepo) Delete(ctx context.Context, follower, followee string) error {
	key := followKey{follower, followee}
	if _, ok := f.edges[key]; !ok {
		return store.ErrNotFound
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeFollowRepo) Exists(ctx context.Context, follower, followee string) (bool, error) {
	_, ok := f.edges[followKey{follower, followee}]
	return ok, nil
}

func (f *fakeFollowRepo) Followers(ctx context.Context, username string) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0)
	for key := range f.edges {
		if key.followee == username {
			out = append(out, types.UserSummary{Username: key.follower})
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) Following(ctx context.Context, username string) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0)
	for key := range f.edges {
		if key.follower == username {
			out = append(out, types.UserSummary{Username: key.followee})
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) Counts(ctx context.Context, username string) (int, int, error) {
	var followers, following int
	for key := range f.edges {
		if key.followee == username {
			followers++
		}
		if key.follower == username {
			following++
		}
	}
	return followers, following, nil
}

type fakePostRepo struct {
	posts   map[int]types.Post
	follows *fakeFollowRepo
	nextID  int
}

func newFakePostRepo(follows *fakeFollowRepo) *fakePostRepo {
	return &fakePostRepo{posts: make(map[int]types.Post), follows: follows}
}

func (f *fakePostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) Get(ctx context.Context, id int) (types.Post, error) {
	if p, ok := f.posts[id]; ok {
		return p, nil
	}
	return types.Post{}, store.ErrNotFound
}

func (f *fakePostRepo) sorted() []types.Post {
	out := make([]types.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakePostRepo) Search(ctx context.Context, query, language string) ([]types.Post, error) {
	out := make([]types.Post, 0)
	for _, p := range f.sorted() {
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

func (f *fakePostRepo) ListByAuthor(ctx context.Context, author string, offset, limit int) ([]types.Post, int, error) {
	matched := make([]types.Post, 0)
	for _, p := range f.sorted() {
		if p.Author == author {
			matched = append(matched, p)
		}
	}
	return paginate(matched, offset, limit), len(matched), nil
}

func (f *fakePostRepo) Feed(ctx context.Context, username string, offset, limit int) ([]types.Post, int, error) {
	matched := make([]types.Post, 0)
	for _, p := range f.sorted() {
		if ok, _ := f.follows.Exists(ctx, username, p.Author); ok {
			matched = append(matched, p)
		}
	}
	return paginate(matched, offset, limit), len(matched), nil
}

func (f *fakePostRepo) CountByAuthor(ctx context.Context, author string) (int, error) {
	count := 0
	for _, p := range f.posts {
		if p.Author == author {
			count++
		}
	}
	return count, nil
}

func paginate(posts []types.Post, offset, limit int) []types.Post {
	if offset >= len(posts) {
		return []types.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

type fakeCommentRepo struct {
	comments map[int]types.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int]types.Comment)}
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	f.comments[comment.ID] = comment
	return comment, nil
}

func (f *fakeCommentRepo) Get(ctx context.Context, id int) (types.Comment, error) {
	if c, ok := f.comments[id]; ok {
		return c, nil
	}
	return types.Comment{}, store.ErrNotFound
}

func (f *fakeCommentRepo) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	out := make([]types.Comment, 0)
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

type voteKey struct {
	postID   int
	username string
}

type fakeVoteRepo struct {
	votes map[voteKey]bool
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[voteKey]bool)}
}

func (f *fakeVoteRepo) Apply(ctx context.Context, postID int, username string, isLike bool) (types.VoteResult, error) {
	key := voteKey{postID, username}
	current, ok := f.votes[key]
	switch {
	case !ok:
		f.votes[key] = isLike
		return types.VoteResult{Action: types.VoteCreated, IsLike: isLike}, nil
	case current == isLike:
		delete(f.votes, key)
		return types.VoteResult{Action: types.VoteRemoved, IsLike: isLike}, nil
	default:
		f.votes[key] = isLike
		return types.VoteResult{Action: types.VoteUpdated, IsLike: isLike}, nil
	}
}

func (f *fakeVoteRepo) Counts(ctx context.Context, postID int, viewer string) (types.VoteCounts, error) {
	var counts types.VoteCounts
	for key, isLike := range f.votes {
		if key.postID != postID {
			continue
		}
		if isLike {
			counts.Likes++
		} else {
			counts.Dislikes++
		}
		if key.username == viewer {
			v := isLike
			counts.ViewerVote = &v
		}
	}
	return counts, nil
}
