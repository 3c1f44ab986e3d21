package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// FollowRepository handles persistence for follow edges.
type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts a follow edge. A duplicate pair surfaces as
// ErrConflict via the unique (follower, followee) index.
func (r *FollowRepository) Create(ctx context.Context, follow types.Follow) (types.Follow, error) {
	follow.CreatedAt = time.Now()

	const query = `
		INSERT INTO follows (follower, followee, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		follow.Follower,
		follow.Followee,
		follow.CreatedAt,
	).Scan(&follow.ID); err != nil {
		return types.Follow{}, conflictOr(err)
	}
	return follow, nil
}

// Delete removes a follow edge, ErrNotFound when no such edge exists.
func (r *FollowRepository) Delete(ctx context.Context, follower, followee string) error {
	const query = `DELETE FROM follows WHERE follower = $1 AND followee = $2`
	result, err := r.db.ExecContext(ctx, query, follower, followee)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, follower, followee string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM follows WHERE follower = $1 AND followee = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, follower, followee).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Followers lists the accounts following the user, joined with users
// for display fields. Password hashes never leave the users table.
func (r *FollowRepository) Followers(ctx context.Context, username string) ([]types.UserSummary, error) {
	const query = `
		SELECT u.username, u.email, u.profile_picture
		FROM follows f
		JOIN users u ON u.username = f.follower
		WHERE f.followee = $1
		ORDER BY f.created_at DESC`
	return r.listSummaries(ctx, query, username)
}

// Following lists the accounts the user follows.
func (r *FollowRepository) Following(ctx context.Context, username string) ([]types.UserSummary, error) {
	const query = `
		SELECT u.username, u.email, u.profile_picture
		FROM follows f
		JOIN users u ON u.username = f.followee
		WHERE f.follower = $1
		ORDER BY f.created_at DESC`
	return r.listSummaries(ctx, query, username)
}

func (r *FollowRepository) listSummaries(ctx context.Context, query, username string) ([]types.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.UserSummary, 0)
	for rows.Next() {
		var user types.UserSummary
		if err := rows.Scan(&user.Username, &user.Email, &user.ProfilePicture); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Counts returns follower and following totals in one round trip.
func (r *FollowRepository) Counts(ctx context.Context, username string) (followers, following int, err error) {
	const query = `
		SELECT
			(SELECT COUNT(1) FROM follows WHERE followee = $1),
			(SELECT COUNT(1) FROM follows WHERE follower = $1)`
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&followers, &following); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
