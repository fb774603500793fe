package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/apperr"
)

type errorBody struct {
	Detail string `json:"detail"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status and writes {"detail": message}.
// Internal causes are logged and never sent to the client.
func WriteError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.Internal || code == apperr.Unavailable {
		if log != nil {
			log.Error(op+": request failed", zap.String("code", string(code)), zap.Error(err))
		}
	}
	WriteJSON(w, code.HTTPStatus(), errorBody{Detail: apperr.MessageOf(err)})
}

// WriteDetail writes a bare error body for failures raised outside the domain.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, errorBody{Detail: detail})
}

// DecodeJSON reads a request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, "Invalid request body", err)
	}
	return nil
}
