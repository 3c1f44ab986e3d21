package services

import (
	"context"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Create(ctx context.Context, follow types.Follow) (types.Follow, error)
	Delete(ctx context.Context, follower, followee string) error
	Exists(ctx context.Context, follower, followee string) (bool, error)
	Followers(ctx context.Context, username string) ([]types.UserSummary, error)
	Following(ctx context.Context, username string) ([]types.UserSummary, error)
	Counts(ctx context.Context, username string) (followers, following int, err error)
}

// SocialService encapsulates the follow graph use-cases.
type SocialService struct {
	follows  FollowRepository
	users    UserRepository
	posts    PostRepository
	notifier *Notifier
}

func NewSocialService(follows FollowRepository, users UserRepository, posts PostRepository, notifier *Notifier) *SocialService {
	return &SocialService{
		follows:  follows,
		users:    users,
		posts:    posts,
		notifier: notifier,
	}
}

// Follow creates a follow edge. Self-follows are rejected, the followee
// must exist, and a duplicate edge surfaces as store.ErrConflict.
func (s *SocialService) Follow(ctx context.Context, follower, followee string) (types.Follow, error) {
	if follower == followee {
		return types.Follow{}, invalidf("you cannot follow yourself")
	}

	if _, err := s.users.GetByUsername(ctx, followee); err != nil {
		return types.Follow{}, err
	}

	follow, err := s.follows.Create(ctx, types.Follow{
		Follower: follower,
		Followee: followee,
	})
	if err != nil {
		return types.Follow{}, err
	}

	s.notifier.Followed(ctx, follower, followee)
	return follow, nil
}

// Unfollow removes the edge; store.ErrNotFound when none exists.
func (s *SocialService) Unfollow(ctx context.Context, follower, followee string) error {
	return s.follows.Delete(ctx, follower, followee)
}

func (s *SocialService) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	return s.follows.Exists(ctx, follower, followee)
}

func (s *SocialService) Followers(ctx context.Context, username string) ([]types.UserSummary, error) {
	return s.follows.Followers(ctx, username)
}

func (s *SocialService) Following(ctx context.Context, username string) ([]types.UserSummary, error) {
	return s.follows.Following(ctx, username)
}

// Stats recomputes the profile counts on demand; nothing is cached.
func (s *SocialService) Stats(ctx context.Context, username string) (types.UserStats, error) {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		return types.UserStats{}, err
	}

	postCount, err := s.posts.CountByAuthor(ctx, username)
	if err != nil {
		return types.UserStats{}, err
	}
	followers, following, err := s.follows.Counts(ctx, username)
	if err != nil {
		return types.UserStats{}, err
	}

	return types.UserStats{
		Posts:     postCount,
		Followers: followers,
		Following: following,
	}, nil
}
