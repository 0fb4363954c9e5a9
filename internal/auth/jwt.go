// Package auth resolves bearer tokens into authenticated principals.
package auth

import (
	"context"
	"fmt"
	"time"

	"cricket-quiz-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityProvider turns a bearer token into a principal.
type IdentityProvider interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

type Claims struct {
	Sub         string   `json:"sub"`
	Name        string   `json:"name,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider validates HS256 tokens signed with a shared secret.
type JWTProvider struct {
	hmac   []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTProvider(secret, issuer string, ttl time.Duration) *JWTProvider {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTProvider{hmac: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for p. Used by the CLI and tests.
func (a *JWTProvider) Issue(p domain.Principal) (string, error) {
	now := a.now()
	claims := &Claims{
		Sub:         p.UserID,
		Name:        p.DisplayName,
		Role:        p.Role,
		Permissions: p.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *JWTProvider) Authenticate(_ context.Context, tokenStr string) (domain.Principal, error) {
	if tokenStr == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, opts...)
	if err != nil || !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok || c.Sub == "" {
		return domain.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}
	return domain.Principal{
		UserID:      c.Sub,
		DisplayName: c.Name,
		Role:        c.Role,
		Permissions: c.Permissions,
	}, nil
}
