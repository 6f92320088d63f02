package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// Manager mints and verifies HMAC-signed bearer tokens. Verification is a
// single code path shared by every service: the signature and expiry are
// checked on every call, without exception.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

type tokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue mints a token carrying the user identity, issued now and expiring
// after the configured TTL.
func (m *Manager) Issue(userID, username string) (string, domain.TokenClaims, error) {
	now := m.now().UTC()
	expires := now.Add(m.ttl)

	claims := tokenClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", domain.TokenClaims{}, domain.WrapError(domain.ErrAuthentication, "sign token", err)
	}

	return signed, domain.TokenClaims{
		UserID:    userID,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// Verify strips an optional "Bearer " prefix, checks the signature and
// expiry, and returns the claims. Any failure maps to ErrAuthentication.
func (m *Manager) Verify(raw string) (domain.TokenClaims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return domain.TokenClaims{}, domain.WrapError(domain.ErrAuthentication, "verify token", jwt.ErrTokenMalformed)
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.TokenClaims{}, domain.WrapError(domain.ErrAuthentication, "verify token", err)
	}
	if !parsed.Valid {
		return domain.TokenClaims{}, domain.WrapError(domain.ErrAuthentication, "verify token", jwt.ErrTokenInvalidClaims)
	}

	return domain.TokenClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
