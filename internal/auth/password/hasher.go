package password

import (
	"fmt"

	"github.com/alexedwards/argon2id"
)

// Hasher wraps argon2id with fixed parameters. Each hash carries its own
// random salt inside the encoded string.
type Hasher struct {
	params *argon2id.Params
}

func NewDefault() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

func (h *Hasher) Hash(plain string) (string, error) {
	encoded, err := argon2id.CreateHash(plain, h.params)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return encoded, nil
}

func (h *Hasher) Verify(plain, hash string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(plain, hash)
	if err != nil {
		return false, fmt.Errorf("compare password hash: %w", err)
	}
	return match, nil
}
