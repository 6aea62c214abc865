package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "decolei/internal/errors"
)

func TestMapToHTTPStatus_TypedErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validação", apperror.NewValidationError("x"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"não encontrado", apperror.NewNotFoundError("x"), http.StatusNotFound, "NOT_FOUND"},
		{"conflito", apperror.NewConflictError("x"), http.StatusConflict, "CONFLICT"},
		{"não autorizado", apperror.NewUnauthorizedError("x"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"proibido", apperror.NewForbiddenError("x"), http.StatusForbidden, "FORBIDDEN"},
		{"capacidade", apperror.NewCapacityExceededError("x"), http.StatusBadRequest, "CAPACITY_EXCEEDED"},
		{"estado", apperror.NewInvalidStateError("x"), http.StatusBadRequest, "INVALID_STATE"},
		{"pré-condição", apperror.NewPreconditionFailedError("x"), http.StatusPreconditionFailed, "PRECONDITION_FAILED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, category, msg := apperror.MapToHTTPStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.category, category)
			assert.Equal(t, tc.err.Error(), msg)
		})
	}
}

func TestMapToHTTPStatus_WrappedError(t *testing.T) {
	err := fmt.Errorf("camada de serviço: %w", apperror.NewNotFoundError("Reserva x"))

	status, category, _ := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", category)
}

func TestMapToHTTPStatus_InternalHidesDetails(t *testing.T) {
	err := apperror.NewDBError("falha ao inserir reserva", errors.New("pq: connection refused"))

	status, category, msg := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", category)
	assert.NotContains(t, msg, "connection refused")
}

func TestMapToHTTPStatus_UntypedError(t *testing.T) {
	status, category, msg := apperror.MapToHTTPStatus(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "UNKNOWN_ERROR", category)
	assert.NotContains(t, msg, "boom")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("causa raiz")
	err := apperror.NewInternalError("falhou", cause)

	assert.ErrorIs(t, err, cause)
}
