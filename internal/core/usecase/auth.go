package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

const minPasswordLength = 6

// AuthUseCase handles registration and login. It is pure compute plus the
// user store: it never touches queues or the document pipeline.
type AuthUseCase struct {
	users  ports.UserStore
	hasher ports.PasswordHasher
	tokens ports.TokenManager
}

func NewAuthUseCase(users ports.UserStore, hasher ports.PasswordHasher, tokens ports.TokenManager) *AuthUseCase {
	return &AuthUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, username, password, email string) (*domain.AuthResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	email = strings.TrimSpace(email)

	if username == "" || password == "" {
		return nil, domain.WrapError(domain.ErrValidation, "register", errors.New("username and password are required"))
	}
	if len(password) < minPasswordLength {
		return nil, domain.WrapError(domain.ErrValidation, "register",
			fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := uc.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.WrapError(domain.ErrConflict, "register", errors.New("username already exists"))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := newOpaqueID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	user := &domain.User{
		Username:     username,
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}

	return uc.mintResult(user)
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, domain.WrapError(domain.ErrValidation, "login", errors.New("username and password are required"))
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrAuthentication, "login", errors.New("invalid username or password"))
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	match, err := uc.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, domain.WrapError(domain.ErrAuthentication, "login", errors.New("invalid username or password"))
	}

	// Prior tokens stay valid until expiry: tokens are stateless and
	// cannot be revoked in this design.
	return uc.mintResult(user)
}

func (uc *AuthUseCase) mintResult(user *domain.User) (*domain.AuthResult, error) {
	signed, _, err := uc.tokens.Issue(user.UserID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	return &domain.AuthResult{
		Token:    signed,
		UserID:   user.UserID,
		Username: user.Username,
	}, nil
}

func newOpaqueID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
