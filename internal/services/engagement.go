package services

import (
	"context"
	"strings"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Get(ctx context.Context, id int) (types.Comment, error)
	ListByPost(ctx context.Context, postID int) ([]types.Comment, error)
	Delete(ctx context.Context, id int) error
}

// VoteRepository defines persistence operations for votes.
type VoteRepository interface {
	Apply(ctx context.Context, postID int, username string, isLike bool) (types.VoteResult, error)
	Counts(ctx context.Context, postID int, viewer string) (types.VoteCounts, error)
}

// EngagementService encapsulates comments and votes.
type EngagementService struct {
	comments CommentRepository
	votes    VoteRepository
	posts    PostRepository
	notifier *Notifier
}

func NewEngagementService(comments CommentRepository, votes VoteRepository, posts PostRepository, notifier *Notifier) *EngagementService {
	return &EngagementService{
		comments: comments,
		votes:    votes,
		posts:    posts,
		notifier: notifier,
	}
}

// AddComment rejects empty text and requires the post to exist.
func (s *EngagementService) AddComment(ctx context.Context, postID int, author, text string) (types.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Comment{}, invalidf("comment text is required")
	}

	if _, err := s.posts.Get(ctx, postID); err != nil {
		return types.Comment{}, err
	}

	comment, err := s.comments.Create(ctx, types.Comment{
		PostID: postID,
		Author: author,
		Text:   text,
	})
	if err != nil {
		return types.Comment{}, err
	}

	s.notifier.Commented(ctx, postID, author)
	return comment, nil
}

// DeleteComment requires the requester to be the comment's author.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID int, requester string) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.Author != requester {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *EngagementService) ListComments(ctx context.Context, postID int) ([]types.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

// Vote applies the toggle state machine to the (post, voter) pair.
func (s *EngagementService) Vote(ctx context.Context, postID int, voter string, isLike bool) (types.VoteResult, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return types.VoteResult{}, err
	}

	result, err := s.votes.Apply(ctx, postID, voter, isLike)
	if err != nil {
		return types.VoteResult{}, err
	}

	s.notifier.Voted(ctx, postID, voter, result.Action)
	return result, nil
}

// VoteCounts aggregates the post's votes; viewer may be empty.
func (s *EngagementService) VoteCounts(ctx context.Context, postID int, viewer string) (types.VoteCounts, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return types.VoteCounts{}, err
	}
	return s.votes.Counts(ctx, postID, viewer)
}
