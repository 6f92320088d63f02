package usecase

import (
	"context"
	"testing"

	"github.com/kpetrov/docflow/internal/core/domain"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserStore(), fakeHasher{}, &fakeTokenManager{})

	registered, err := uc.Register(context.Background(), "alice", "secret1", "alice@example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if registered.Token == "" || registered.UserID == "" {
		t.Fatalf("expected token and user id, got %+v", registered)
	}
	if registered.Username != "alice" {
		t.Fatalf("expected username alice, got %s", registered.Username)
	}

	loggedIn, err := uc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.UserID != registered.UserID {
		t.Fatalf("login user id %s does not match registered %s", loggedIn.UserID, registered.UserID)
	}
}

func TestAuthRegisterDuplicateUsername(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserStore(), fakeHasher{}, &fakeTokenManager{})

	if _, err := uc.Register(context.Background(), "bob", "secret1", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := uc.Register(context.Background(), "bob", "other-secret", "")
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserStore(), fakeHasher{}, &fakeTokenManager{})

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "secret1"},
		{"empty password", "carol", ""},
		{"short password", "carol", "12345"},
		{"whitespace only", "   ", "secret1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tc.username, tc.password, "")
			if !domain.IsKind(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthLoginWrongPassword(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserStore(), fakeHasher{}, &fakeTokenManager{})

	if _, err := uc.Register(context.Background(), "dave", "secret1", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := uc.Login(context.Background(), "dave", "wrong-password")
	if !domain.IsKind(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestAuthLoginUnknownUser(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserStore(), fakeHasher{}, &fakeTokenManager{})

	_, err := uc.Login(context.Background(), "nobody", "secret1")
	if !domain.IsKind(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}
