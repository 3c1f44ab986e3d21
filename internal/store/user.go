package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, phone, dob, password_hash, profile_picture, created_at`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.DateOfBirth,
		&user.PasswordHash,
		&user.ProfilePicture,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts the user row. Duplicate usernames or emails surface as
// ErrConflict via the unique indexes.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now()

	const query = `
		INSERT INTO users (username, email, phone, dob, password_hash, profile_picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.Phone,
		user.DateOfBirth,
		user.PasswordHash,
		user.ProfilePicture,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, conflictOr(err)
	}
	return user, nil
}

// Search returns users whose username or email contains the query,
// case-insensitively. An empty query matches everyone.
func (r *UserRepository) Search(ctx context.Context, query string) ([]types.UserSummary, error) {
	const listQuery = `
		SELECT username, email, profile_picture
		FROM users
		WHERE username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY username`
	rows, err := r.db.QueryContext(ctx, listQuery, query)
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

// UpdateProfilePicture is the only user mutation after registration.
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, username, key string) error {
	const query = `UPDATE users SET profile_picture = $1 WHERE username = $2`
	result, err := r.db.ExecContext(ctx, query, key, username)
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

// UpdatePassword replaces the stored hash, used by the reset flow.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, userID)
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
