package services

import (
	"context"
	"errors"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	Get(ctx context.Context, token string) (types.Session, error)
	Delete(ctx context.Context, token string) error
	Touch(ctx context.Context, token string, expiresAt time.Time) error
}

// SessionService issues and validates server-side login sessions.
type SessionService struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration
	sliding  bool
}

func NewSessionService(users UserRepository, sessions SessionRepository, ttl time.Duration, sliding bool) *SessionService {
	return &SessionService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		sliding:  sliding,
	}
}

// Login verifies the credentials and creates a session. Unknown users
// and wrong passwords both return ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, username, password string) (types.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, ErrInvalidCredentials
		}
		return types.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.Session{}, ErrInvalidCredentials
	}

	return s.sessions.Create(ctx, types.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.ttl),
	})
}

// Logout destroys the session; absent tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Current resolves the session behind a token. Expired sessions are
// deleted on sight and reported as store.ErrNotFound. In sliding mode a
// valid lookup pushes the deadline forward.
func (s *SessionService) Current(ctx context.Context, token string) (types.Session, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return types.Session{}, err
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return types.Session{}, store.ErrNotFound
	}

	if s.sliding {
		session.ExpiresAt = time.Now().Add(s.ttl)
		if err := s.sessions.Touch(ctx, token, session.ExpiresAt); err != nil {
			return types.Session{}, err
		}
	}
	return session, nil
}
