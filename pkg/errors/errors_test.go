package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(fmt.Errorf("dial tcp: refused"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
}

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "schedule not found"))
	appErr := FromError(wrapped)
	assert.Equal(t, "schedule not found", appErr.Message)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestIsMatchesOnCode(t *testing.T) {
	cause := errors.New("pq: relation missing")
	err := Internal(cause, "failed to fetch schedule summary")
	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(Clone(ErrConflict, "dup"), ErrConflict))
}

func TestErrorString(t *testing.T) {
	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Equal(t, "boom: cause", Wrap(errors.New("cause"), "X", 500, "boom").Error())
}
