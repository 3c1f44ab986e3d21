package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	minAgeYears       = 10
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+\d{1,4}\d{6,12}$`)
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Search(ctx context.Context, query string) ([]types.UserSummary, error)
	UpdateProfilePicture(ctx context.Context, username, key string) error
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Username    string
	Email       string
	Phone       string
	DateOfBirth string
	Password    string
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register validates the input, hashes the password and persists the
// user. Duplicate usernames or emails surface as store.ErrConflict.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Username == "" || input.Email == "" || input.Phone == "" || input.DateOfBirth == "" || input.Password == "" {
		return types.User{}, invalidf("all fields are required")
	}
	if strings.ContainsAny(input.Username, " \t\n") {
		return types.User{}, invalidf("username must not contain whitespace")
	}
	if !emailPattern.MatchString(input.Email) {
		return types.User{}, invalidf("invalid email address")
	}
	if !phonePattern.MatchString(input.Phone) {
		return types.User{}, invalidf("phone number must include a country code, e.g. +4471234567")
	}
	dob, err := time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		return types.User{}, invalidf("date of birth must be in YYYY-MM-DD format")
	}
	if !oldEnough(dob, time.Now(), minAgeYears) {
		return types.User{}, invalidf("you must be at least %d years old", minAgeYears)
	}
	if len(input.Password) < minPasswordLength {
		return types.User{}, invalidf("password must be at least %d characters", minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Username:     input.Username,
		Email:        input.Email,
		Phone:        input.Phone,
		DateOfBirth:  dob,
		PasswordHash: string(hashed),
	})
}

// oldEnough reports whether dob yields at least minYears of age at now.
// A birthday exactly minYears ago passes; one day later fails.
func oldEnough(dob, now time.Time, minYears int) bool {
	cutoff := time.Date(now.Year()-minYears, now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	return !dob.After(cutoff)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) Search(ctx context.Context, query string) ([]types.UserSummary, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}

func (s *UserService) UpdateProfilePicture(ctx context.Context, username, key string) error {
	return s.repo.UpdateProfilePicture(ctx, username, key)
}
