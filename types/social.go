package types

import "time"

// Follow is a directed edge recording that Follower's feed includes
// Followee's posts. The (follower, followee) pair is unique and
// self-follows are rejected.
type Follow struct {
	ID        int       `json:"id" db:"id"`
	Follower  string    `json:"follower" db:"follower"`
	Followee  string    `json:"followee" db:"followee"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment is a user-authored remark on a post. Only the author may
// delete it.
type Comment struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"post_id" db:"post_id"`
	Author    string    `json:"author" db:"author"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Vote is one user's like or dislike on one post. At most one row
// exists per (post, user) pair; revoting toggles or flips it.
type Vote struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"post_id" db:"post_id"`
	Username  string    `json:"username" db:"username"`
	IsLike    bool      `json:"is_like" db:"is_like"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VoteAction describes what a vote request did to the stored vote.
type VoteAction string

const (
	// VoteCreated means no vote existed and one was inserted.
	VoteCreated VoteAction = "created"

	// VoteUpdated means an opposite-direction vote was flipped.
	VoteUpdated VoteAction = "updated"

	// VoteRemoved means a same-direction revote deleted the vote.
	VoteRemoved VoteAction = "removed"
)

// VoteResult is the outcome of a vote request.
type VoteResult struct {
	Action VoteAction `json:"action"`
	IsLike bool       `json:"is_like"`
}

// VoteCounts aggregates the votes on a post. ViewerVote is nil when the
// viewer is anonymous or has not voted, otherwise it carries the
// viewer's like/dislike flag.
type VoteCounts struct {
	Likes      int   `json:"like_count"`
	Dislikes   int   `json:"dislike_count"`
	ViewerVote *bool `json:"viewer_vote,omitempty"`
}
