package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("post", 1), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("text", "required"), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("group", "cats"), ErrConflict, true},
		{"Forbidden wraps ErrForbidden", Forbidden("nope"), ErrForbidden, true},
		{"NotFound is not ErrValidation", NotFound("post", 1), ErrValidation, false},
		{"wrapped twice still matches", fmt.Errorf("service: %w", NotFound("group", "x")), ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "post 42 not found", NotFound("post", 42).Error())
	assert.Equal(t, "group cats already exists", Conflict("group", "cats").Error())
	assert.Equal(t, "text is required", ValidationFailed("text", "text is required").Error())
}

func TestFieldErrors(t *testing.T) {
	assert.Equal(t,
		map[string]string{"text": "required"},
		FieldErrors(fmt.Errorf("wrap: %w", ValidationFailed("text", "required"))),
	)
	assert.Equal(t,
		map[string]string{"__all__": "bad credentials"},
		FieldErrors(ValidationFailed("", "bad credentials")),
	)
	assert.Nil(t, FieldErrors(NotFound("post", 1)))
	assert.Nil(t, FieldErrors(errors.New("boom")))
}
