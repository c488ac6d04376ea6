package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-municipal-registry/internal/ports/auth"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrSecretMissing = errors.New("jwt secret not configured")
)

// Verifier implementa auth.AuthVerifier con tokens HS256 firmados por la
// propia municipalidad. No se integra automáticamente; queda listo para que
// lo instancien desde main/router cuando JWT_SECRET esté configurado.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrSecretMissing
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("jwt verify failed: %w", err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, errors.New("jwt claims invalid")
	}

	claims := auth.Claims{
		UserID: strings.TrimSpace(stringClaim(mc, "user_id")),
		Role:   strings.TrimSpace(stringClaim(mc, "role")),
		Email:  strings.TrimSpace(stringClaim(mc, "email")),
	}
	if claims.UserID == "" {
		return auth.Claims{}, errors.New("jwt claims missing user id")
	}

	return claims, nil
}

// IssueToken firma un token HS256 con los claims mínimos del sistema.
// Lo usa la herramienta de alta de personal y los tests.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrSecretMissing
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
		"iss":     "pet-municipal-registry",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func stringClaim(mc jwt.MapClaims, key string) string {
	v, ok := mc[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
