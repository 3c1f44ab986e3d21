package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:    "alice",
		Email:       "alice@example.com",
		Phone:       "+447700900123",
		DateOfBirth: "1990-05-01",
		Password:    "secret123",
	}
}

func TestRegister(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected an assigned ID")
	}
	if user.PasswordHash == "secret123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"whitespace username", func(in *RegisterInput) { in.Username = "al ice" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"phone without country code", func(in *RegisterInput) { in.Phone = "07700900123" }},
		{"bad date format", func(in *RegisterInput) { in.DateOfBirth = "01/05/1990" }},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegisterInput()
			tc.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterMinimumAge(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())
	now := time.Now()

	exactly := now.AddDate(-minAgeYears, 0, 0)
	in := validRegisterInput()
	in.DateOfBirth = exactly.Format("2006-01-02")
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("birthday exactly %d years ago should pass: %v", minAgeYears, err)
	}

	tooYoung := exactly.AddDate(0, 0, 1)
	in = validRegisterInput()
	in.Username = "bob"
	in.Email = "bob@example.com"
	in.DateOfBirth = tooYoung.Format("2006-01-02")
	if _, err := svc.Register(context.Background(), in); !IsValidation(err) {
		t.Fatalf("one day short of %d years should fail, got %v", minAgeYears, err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, validRegisterInput()); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on duplicate username, got %v", err)
	}

	in := validRegisterInput()
	in.Username = "alice2"
	in.Email = "ALICE@example.com"
	if _, err := svc.Register(ctx, in); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	for _, in := range []RegisterInput{
		{Username: "alice", Email: "alice@example.com", Phone: "+447700900123", DateOfBirth: "1990-05-01", Password: "secret123"},
		{Username: "bob", Email: "bob@example.com", Phone: "+447700900124", DateOfBirth: "1991-06-02", Password: "secret123"},
	} {
		if _, err := svc.Register(ctx, in); err != nil {
			t.Fatalf("register %s: %v", in.Username, err)
		}
	}

	found, err := svc.Search(ctx, "ali")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Username != "alice" {
		t.Fatalf("expected [alice], got %v", found)
	}
}
