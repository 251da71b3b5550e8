package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/revplan/internal/errors"
)

func TestAsAppError(t *testing.T) {
	nf := errors.NewNotFoundError("study item", "bio-x")
	wrapped := fmt.Errorf("complete session: %w", nf)

	assert.Same(t, nf, errors.AsAppError(wrapped))
	assert.True(t, errors.IsNotFound(wrapped))

	plain := stderrors.New("disk full")
	appErr := errors.AsAppError(plain)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, plain)
	assert.False(t, errors.IsNotFound(plain))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: deadline not found: t1", errors.NewNotFoundError("deadline", "t1").Error())
	assert.Equal(t, "VALIDATION_ERROR: validation failed for duration: must be positive",
		errors.NewValidationError("duration", "must be positive").Error())
	assert.Equal(t, http.StatusBadRequest, errors.NewBadRequestError("bad").Status)
}
