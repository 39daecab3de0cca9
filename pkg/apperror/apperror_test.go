package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("comment service: %w", NotFound("Comment not found"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindPersistence, KindOf(errors.New("connection reset")))
	assert.Equal(t, KindConflict, KindOf(Conflict("already liked")))
}

func TestPublicMessageHidesPersistenceDetail(t *testing.T) {
	err := Persistence(errors.New("E11000 duplicate key on users.email"))

	assert.Equal(t, GenericMessage, PublicMessage(err))
	assert.Equal(t, GenericMessage, PublicMessage(errors.New("raw driver error")))
	assert.Equal(t, "Comment cannot be empty", PublicMessage(Validation("Comment cannot be empty")))
	assert.False(t, IsExpected(err))
	assert.True(t, IsExpected(Forbidden("Access denied")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindValidation:     http.StatusBadRequest,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindRateLimited:    http.StatusTooManyRequests,
		KindPersistence:    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), "kind %s", kind)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Persistence(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "timeout")
}
