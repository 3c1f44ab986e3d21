package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const recoveryIssuer = "codelogs-recovery"

// ErrBadResetToken is returned when a reset token is missing, expired
// or fails verification.
var ErrBadResetToken = errors.New("invalid or expired reset token")

// RecoveryService implements account recovery with signed, short-lived
// reset tokens. Passwords are never revealed; the token is the only
// secret exchanged.
type RecoveryService struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewRecoveryService(users UserRepository, secret string, tokenTTL time.Duration) *RecoveryService {
	return &RecoveryService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// IssueToken looks up the account by email and returns a signed reset
// token. When a username is supplied it must match the account. Lookup
// failures surface as store.ErrNotFound; callers are expected to mask
// them behind a generic response.
func (s *RecoveryService) IssueToken(ctx context.Context, email, username string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if username != "" && user.Username != username {
		return "", ErrBadResetToken
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    recoveryIssuer,
		Subject:   strconv.Itoa(user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Reset consumes a reset token and replaces the account's password.
func (s *RecoveryService) Reset(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return invalidf("password must be at least %d characters", minPasswordLength)
	}

	userID, err := s.parseToken(tokenString)
	if err != nil {
		return ErrBadResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hashed))
}

func (s *RecoveryService) parseToken(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(recoveryIssuer))
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}
