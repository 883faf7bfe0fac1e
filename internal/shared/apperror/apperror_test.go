package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"masar-finance/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps its status and code", func(t *testing.T) {
		httpErr := apperror.ToHTTP(apperror.ErrForbidden)

		assert.Equal(t, http.StatusForbidden, httpErr.Status)
		assert.Equal(t, apperror.CodeForbidden, httpErr.Code)
	})

	t.Run("wrapped app error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("load: %w", apperror.ErrNotFound)

		httpErr := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, apperror.CodeNotFound, httpErr.Code)
	})

	t.Run("unknown error hides its text", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
		assert.NotContains(t, httpErr.Message, "connection refused")
	})
}

func TestWithDetail(t *testing.T) {
	sentinel := apperror.New(apperror.CodeInvalidState, "invalid status transition", http.StatusConflict)

	err := apperror.WithDetail(sentinel, "from %s to %s", "PAID", "DRAFT")

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "invalid status transition: from PAID to DRAFT", err.Message)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
}

func TestMapValidationError(t *testing.T) {
	type payload struct {
		Name   string `validate:"required"`
		Amount int    `validate:"gt=0"`
	}
	v := validator.New()

	err := apperror.MapValidationError(v.Struct(payload{Amount: 1}))
	assert.Equal(t, "Name is required", err.(*apperror.AppError).Message)

	err = apperror.MapValidationError(v.Struct(payload{Name: "cash"}))
	assert.Equal(t, "Amount is invalid", err.(*apperror.AppError).Message)
}

func TestIsExpected(t *testing.T) {
	assert.True(t, apperror.IsExpected(apperror.ErrNotFound))
	assert.True(t, apperror.IsExpected(fmt.Errorf("x: %w", apperror.ErrInvalidInput)))
	assert.False(t, apperror.IsExpected(apperror.ErrInternal))
	assert.False(t, apperror.IsExpected(errors.New("boom")))
}
