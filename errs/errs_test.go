package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name     string
		cause    error
		status   int
		sentinel error
	}{
		{name: "record not found", cause: gorm.ErrRecordNotFound, status: http.StatusNotFound, sentinel: ErrNotFound},
		{name: "wrapped not found", cause: fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), status: http.StatusNotFound, sentinel: ErrNotFound},
		{name: "duplicate key", cause: gorm.ErrDuplicatedKey, status: http.StatusConflict, sentinel: ErrAlreadyExists},
		{name: "foreign key", cause: gorm.ErrForeignKeyViolated, status: http.StatusBadRequest, sentinel: ErrForeignKeyViolated},
		{name: "anything else", cause: errors.New("boom"), status: http.StatusInternalServerError, sentinel: ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "blog post", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestNewDatabaseError_KeepsApiErr(t *testing.T) {
	conflict := NewSlugConflictError("test-title", gorm.ErrDuplicatedKey)

	err := NewDatabaseError("create", "blog post", conflict)

	assert.Same(t, conflict, err)
	assert.ErrorIs(t, err, ErrSlugConflict)
}

func TestApiErr_GetFullError(t *testing.T) {
	inner := NewNotFound("user")
	outer := NewInternalErrorWithCause("loading author", inner)

	assert.Equal(t, "internal server error: loading author -> user not found", outer.GetFullError())
	assert.Equal(t, "user not found", NewNotFound("user").GetFullError())
}

func TestStatusCode_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("x")))
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("wrap: %w", NewNotFound("blog post"))))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("blog post")))
	assert.ErrorIs(t, NewBadRequestError("bad id"), ErrBadRequest)
	assert.True(t, IsConflict(NewSlugConflictError("a", nil)))
	assert.False(t, IsConflict(NewNotFound("blog post")))
}
