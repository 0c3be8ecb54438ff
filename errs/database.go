package errs

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrSlugConflict       = fmt.Errorf("slug already in use: %w", ErrConflict)
	ErrForeignKeyViolated = errors.New("foreign key constraint violation")
)

func NewAlreadyExists(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
	}
}

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewSlugConflictError reports that no free slug could be stored for a post
func NewSlugConflictError(slug string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrSlugConflict,
		Details:    fmt.Sprintf("slug %q is taken", slug),
		Field:      "slug",
		Cause:      cause,
	}
}

// NewDatabaseError classifies a gorm error. The connection must be opened with
// TranslateError so driver-specific errors arrive as gorm sentinels.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)
	switch {
	case errors.Is(cause, gorm.ErrRecordNotFound):
		return &ApiErr{
			StatusCode: http.StatusNotFound,
			err:        fmt.Errorf("%s %w", entity, ErrNotFound),
			Details:    details,
			Cause:      cause,
		}
	case errors.Is(cause, gorm.ErrDuplicatedKey):
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
			Details:    details,
			Cause:      cause,
		}
	case errors.Is(cause, gorm.ErrForeignKeyViolated):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        ErrForeignKeyViolated,
			Details:    "The referenced resource does not exist or cannot be linked",
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}
