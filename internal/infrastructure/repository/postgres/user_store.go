package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// UserStore holds credentials keyed by username. Records are written once
// at registration and never updated.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Put(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (username, user_id, email, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (username) DO NOTHING
`, user.Username, user.UserID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrConflict, "insert user", fmt.Errorf("username %s", user.Username))
	}
	return nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT username, user_id, email, password_hash, created_at
FROM users
WHERE username = $1
`, username)

	var user domain.User
	err := row.Scan(&user.Username, &user.UserID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("username %s", username))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
