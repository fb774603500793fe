package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"go.uber.org/zap"
)

// CustomClaims carries the profile fields the API provisions users from.
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// TokenConfig describes the tokens the API accepts.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

const tokenErrorKey contextKey = "token_error"

// EnsureValidToken validates HS256 bearer tokens. A request whose token is
// missing, malformed or expired passes through with no claims, so public
// routes serve it anonymously. SyncUserMiddleware rejects it on protected
// routes.
func EnsureValidToken(cfg TokenConfig, log *zap.Logger) (func(http.Handler) http.Handler, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is not set")
	}

	keyFunc := func(ctx context.Context) (interface{}, error) {
		return cfg.Secret, nil
	}
	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	return func(next http.Handler) http.Handler {
		anonymous := func(w http.ResponseWriter, r *http.Request, err error) {
			log.Debug("EnsureValidToken: ignoring rejected token", zap.String("path", r.URL.Path), zap.Error(err))
			ctx := context.WithValue(r.Context(), tokenErrorKey, err)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		middleware := jwtmiddleware.New(
			jwtValidator.ValidateToken,
			jwtmiddleware.WithErrorHandler(anonymous),
			jwtmiddleware.WithCredentialsOptional(true),
		)
		return middleware.CheckJWT(next)
	}, nil
}

// TokenError returns why the request's bearer token was rejected, if it was.
func TokenError(ctx context.Context) error {
	err, _ := ctx.Value(tokenErrorKey).(error)
	return err
}
