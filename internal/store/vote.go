package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// VoteRepository handles persistence for like/dislike votes.
type VoteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Apply runs the vote toggle against the single (post, user) row:
// absent inserts, same-direction revote deletes, opposite flips.
// The row is locked for the duration of the transaction; concurrent
// first votes race to the unique pair index and the loser gets
// ErrConflict.
func (r *VoteRepository) Apply(ctx context.Context, postID int, username string, isLike bool) (types.VoteResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.VoteResult{}, err
	}
	defer tx.Rollback()

	const selectQuery = `
		SELECT id, is_like
		FROM votes
		WHERE post_id = $1 AND username = $2
		FOR UPDATE`
	var id int
	var current bool
	err = tx.QueryRowContext(ctx, selectQuery, postID, username).Scan(&id, &current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		now := time.Now()
		const insertQuery = `
			INSERT INTO votes (post_id, username, is_like, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)`
		if _, err := tx.ExecContext(ctx, insertQuery, postID, username, isLike, now); err != nil {
			return types.VoteResult{}, conflictOr(err)
		}
		if err := tx.Commit(); err != nil {
			return types.VoteResult{}, err
		}
		return types.VoteResult{Action: types.VoteCreated, IsLike: isLike}, nil

	case err != nil:
		return types.VoteResult{}, err

	case current == isLike:
		const deleteQuery = `DELETE FROM votes WHERE id = $1`
		if _, err := tx.ExecContext(ctx, deleteQuery, id); err != nil {
			return types.VoteResult{}, err
		}
		if err := tx.Commit(); err != nil {
			return types.VoteResult{}, err
		}
		return types.VoteResult{Action: types.VoteRemoved, IsLike: isLike}, nil

	default:
		const updateQuery = `UPDATE votes SET is_like = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, updateQuery, isLike, time.Now(), id); err != nil {
			return types.VoteResult{}, err
		}
		if err := tx.Commit(); err != nil {
			return types.VoteResult{}, err
		}
		return types.VoteResult{Action: types.VoteUpdated, IsLike: isLike}, nil
	}
}

// Counts aggregates the post's votes. When viewer is non-empty the
// viewer's own vote is included.
func (r *VoteRepository) Counts(ctx context.Context, postID int, viewer string) (types.VoteCounts, error) {
	const query = `
		SELECT
			COUNT(1) FILTER (WHERE is_like),
			COUNT(1) FILTER (WHERE NOT is_like)
		FROM votes
		WHERE post_id = $1`
	var counts types.VoteCounts
	if err := r.db.QueryRowContext(ctx, query, postID).Scan(&counts.Likes, &counts.Dislikes); err != nil {
		return types.VoteCounts{}, err
	}

	if viewer != "" {
		const viewerQuery = `SELECT is_like FROM votes WHERE post_id = $1 AND username = $2`
		var isLike bool
		err := r.db.QueryRowContext(ctx, viewerQuery, postID, viewer).Scan(&isLike)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// no viewer vote
		case err != nil:
			return types.VoteCounts{}, err
		default:
			counts.ViewerVote = &isLike
		}
	}
	return counts, nil
}
