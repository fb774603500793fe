package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Newf(NotFound, "Country %s not found", "abc"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestCodeOfForeignErrorIsInternal(t *testing.T) {
	assert.Equal(t, Internal, CodeOf(errors.New("boom")))
	assert.Equal(t, Conflict, CodeOf(New(Conflict, "dup")))
}

func TestMessageOfHidesInternalCause(t *testing.T) {
	err := Wrap(Internal, "query countries", errors.New("pq: password authentication failed"))

	assert.Equal(t, "Internal server error", MessageOf(err))
	assert.Equal(t, "Project not found", MessageOf(New(NotFound, "Project not found")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		Validation:   http.StatusUnprocessableEntity,
		Unauthorized: http.StatusUnauthorized,
		Unavailable:  http.StatusBadGateway,
		Internal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}
