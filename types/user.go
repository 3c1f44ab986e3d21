package types

import "time"

// User represents a registered account in the system.
// It contains identity, contact and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	// It may not contain whitespace.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// Phone is the user's phone number, including the country code
	// (e.g., "+4471234567").
	Phone string `json:"phone" db:"phone"`

	// DateOfBirth is the user's date of birth. Accounts require an
	// age of at least ten years at registration time.
	DateOfBirth time.Time `json:"dob" db:"dob"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ProfilePicture is the storage key of the user's avatar image,
	// empty when none has been uploaded.
	ProfilePicture string `json:"profile_picture,omitempty" db:"profile_picture"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the reduced user representation used in follower and
// following listings and user search results.
type UserSummary struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Summary returns the public projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}

// UserStats holds the on-demand aggregate counts shown on a profile.
type UserStats struct {
	Posts     int `json:"posts"`
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// Session is a server-side login session. The token is opaque to the
// client and travels in an HTTP-only cookie; the row is the source of
// truth for expiry.
type Session struct {
	// Token is the opaque session identifier held by the client.
	Token string `json:"-" db:"token"`

	// UserID identifies the logged-in user.
	UserID int `json:"user_id" db:"user_id"`

	// Username is the logged-in user's username, denormalized so the
	// auth gate does not need a user lookup per request.
	Username string `json:"username" db:"username"`

	// ExpiresAt is the deadline after which the session is invalid.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt is the timestamp when the session was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
