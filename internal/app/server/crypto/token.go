// Package crypto выпускает и проверяет токены доступа к серверу синхронизации.
package crypto

import (
	"errors"
	"fmt"
	"time"

	"workpro/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "workpro"

var ErrInvalidToken = errors.New("invalid token")

type accessClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
}

// TokenManager подписывает токены HS256; subject - пользователь, tenant_id - арендатор
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue нужен CLI и тестам; промышленные токены выпускает внешний сервис
func (m *TokenManager) Issue(id identity.Identity) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}

	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.UserID,
			Issuer:   m.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		TenantID: id.TenantID,
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Verify(token string) (identity.Identity, error) {
	if token == "" {
		return identity.Identity{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return identity.Identity{}, ErrInvalidToken
	}

	id := identity.Identity{TenantID: claims.TenantID, UserID: claims.Subject}
	if err := id.Validate(); err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, nil
}
