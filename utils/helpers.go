package utils

import (
	"net/http"
	"strconv"
	"strings"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/store"
)

// GetClaims returns the validated token claims, if the request carried a token.
func GetClaims(r *http.Request) (*validator.ValidatedClaims, bool) {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

// GetSubject returns the token subject of the caller.
func GetSubject(r *http.Request) (string, bool) {
	claims, ok := GetClaims(r)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

// ParsePage reads skip and limit from the query string.
func ParsePage(r *http.Request) (store.Page, error) {
	page := store.Page{Limit: store.DefaultLimit}
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("skip")); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return page, apperr.New(apperr.Validation, "skip must be an integer")
		}
		page.Skip = skip
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return page, apperr.New(apperr.Validation, "limit must be an integer")
		}
		page.Limit = limit
	}
	return page, page.Validate()
}
