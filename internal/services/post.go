package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/storage"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
	"github.com/google/uuid"
)

// MaxUploadBytes caps post attachments and avatars at 5 MiB.
const MaxUploadBytes = 5 << 20

var allowedAttachmentExts = map[string]bool{
	".txt": true, ".md": true, ".pdf": true,
	".py": true, ".go": true, ".js": true, ".ts": true,
	".java": true, ".c": true, ".cpp": true, ".h": true,
	".cs": true, ".rb": true, ".rs": true, ".php": true,
	".swift": true, ".kt": true, ".sh": true,
	".html": true, ".css": true, ".json": true, ".xml": true,
	".yml": true, ".yaml": true, ".sql": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".zip": true,
}

var allowedImageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Search(ctx context.Context, query, language string) ([]types.Post, error)
	ListByAuthor(ctx context.Context, author string, offset, limit int) ([]types.Post, int, error)
	Feed(ctx context.Context, username string, offset, limit int) ([]types.Post, int, error)
	CountByAuthor(ctx context.Context, author string) (int, error)
}

// UploadFile is an in-memory uploaded file, already capped by the
// handler's limited reader.
type UploadFile struct {
	Filename string
	Data     []byte
}

// CreatePostInput is the payload accepted by Create.
type CreatePostInput struct {
	Title       string
	Description string
	Code        string
	Language    string
	File        *UploadFile
}

// PostService encapsulates content use-cases.
type PostService struct {
	repo    PostRepository
	storage *storage.Storage
}

func NewPostService(repo PostRepository, storage *storage.Storage) *PostService {
	return &PostService{repo: repo, storage: storage}
}

// Create validates the input, writes the optional attachment to object
// storage and persists the post. The file is written before the row so
// a failed insert leaves at most an orphaned object, never a row
// pointing at a missing file.
func (s *PostService) Create(ctx context.Context, author string, input CreatePostInput) (types.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Language = strings.TrimSpace(input.Language)

	if input.Title == "" {
		return types.Post{}, invalidf("title is required")
	}
	if strings.TrimSpace(input.Code) == "" {
		return types.Post{}, invalidf("code is required")
	}
	if input.Language == "" {
		return types.Post{}, invalidf("language is required")
	}

	post := types.Post{
		Author:      author,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Code:        input.Code,
		Language:    input.Language,
	}

	if input.File != nil {
		attachment, err := s.storeFile(ctx, *input.File, allowedAttachmentExts)
		if err != nil {
			return types.Post{}, err
		}
		post.Attachment = attachment
	}

	return s.repo.Create(ctx, post)
}

// StoreAvatar writes a profile picture and returns its storage key.
// Only image extensions are accepted.
func (s *PostService) StoreAvatar(ctx context.Context, file UploadFile) (string, error) {
	attachment, err := s.storeFile(ctx, file, allowedImageExts)
	if err != nil {
		return "", err
	}
	return attachment.Key, nil
}

func (s *PostService) storeFile(ctx context.Context, file UploadFile, allowed map[string]bool) (*types.Attachment, error) {
	if len(file.Data) == 0 {
		return nil, invalidf("uploaded file is empty")
	}
	if int64(len(file.Data)) > MaxUploadBytes {
		return nil, invalidf("uploaded file exceeds the %d MiB limit", MaxUploadBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowed[ext] {
		return nil, invalidf("file type %q is not allowed", ext)
	}

	key := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	contentType := mime.TypeByExtension(ext)
	if err := s.storage.Put(ctx, key, bytes.NewReader(file.Data), int64(len(file.Data)), contentType); err != nil {
		return nil, err
	}

	return &types.Attachment{
		Key:          key,
		OriginalName: file.Filename,
		Size:         int64(len(file.Data)),
	}, nil
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostService) Search(ctx context.Context, query, language string) ([]types.Post, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query), strings.TrimSpace(language))
}

func (s *PostService) ListByAuthor(ctx context.Context, author string, offset, limit int) ([]types.Post, int, error) {
	return s.repo.ListByAuthor(ctx, author, offset, clampLimit(limit))
}

func (s *PostService) Feed(ctx context.Context, username string, offset, limit int) ([]types.Post, int, error) {
	return s.repo.Feed(ctx, username, offset, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
