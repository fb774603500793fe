package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer holds what is needed to mint access tokens the API accepts.
type Issuer struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the access token payload. Email, name and role feed user provisioning.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Subject struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// CreateToken signs an HS256 access token for the subject.
func (i Issuer) CreateToken(sub Subject, now time.Time) (string, error) {
	if len(i.Secret) == 0 {
		return "", errors.New("auth: signing secret is not set")
	}
	if sub.ID == "" {
		return "", errors.New("auth: subject is required")
	}

	claims := Claims{
		Email: sub.Email,
		Name:  sub.Name,
		Role:  sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Issuer,
			Subject:   sub.ID,
			Audience:  jwt.ClaimStrings{i.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken parses a token minted by CreateToken. The HTTP layer validates
// through the JWT middleware; this is for tooling and tests.
func (i Issuer) VerifyToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.Issuer),
		jwt.WithAudience(i.Audience),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}
