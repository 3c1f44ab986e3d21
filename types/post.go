package types

import "time"

// Post represents a published code snippet.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Author is the username of the account that published the post.
	// Posts are immutable after creation; ownership never changes.
	Author string `json:"author" db:"author"`

	// Title is the required headline of the post.
	Title string `json:"title" db:"title"`

	// Description is an optional free-text explanation of the snippet.
	Description string `json:"description,omitempty" db:"description"`

	// Code is the snippet body.
	Code string `json:"code" db:"code"`

	// Language is the programming language tag used for filtering
	// (e.g., "python", "go").
	Language string `json:"language" db:"language"`

	// Attachment describes the optional uploaded file, nil when the
	// post has none.
	Attachment *Attachment `json:"attachment,omitempty" db:"attachment"`

	// CreatedAt is the timestamp when the post was published.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Attachment describes a file uploaded alongside a post. The file bytes
// live in object storage under Key; the row only carries metadata.
type Attachment struct {
	// Key is the storage key of the uploaded file.
	Key string `json:"key" db:"key"`

	// OriginalName is the filename as submitted by the client.
	OriginalName string `json:"original_name" db:"original_name"`

	// Size is the file size in bytes. Uploads are capped at 5 MiB.
	Size int64 `json:"size" db:"size"`
}
