package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrScopeLocked, ""))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrScopeLocked.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("connection refused"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "connection refused")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "endDate must not be before startDate")
	assert.Equal(t, "endDate must not be before startDate", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapUnwraps(t *testing.T) {
	root := errors.New("dial tcp: timeout")
	err := Wrap(root, ErrInternal.Code, ErrInternal.Status, "failed to load pending exams")
	assert.ErrorIs(t, err, root)
	assert.Equal(t, "failed to load pending exams: dial tcp: timeout", err.Error())
}
