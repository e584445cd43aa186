package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not your shop"), http.StatusForbidden},
		{NotFound("order not found"), http.StatusNotFound},
		{InvalidArgument("validation failed"), http.StatusBadRequest},
		{InvalidState("order can no longer be cancelled"), http.StatusBadRequest},
		{Internal(errors.New("pq: connection refused")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("cancel order: %w", NotFound("order not found"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
}

func TestInvalidArgumentCarriesAllFields(t *testing.T) {
	err := InvalidArgument("validation failed",
		FieldError{Field: "shop_id", Message: "is required"},
		FieldError{Field: "items", Message: "must not be empty"},
	)

	assert.Len(t, err.Fields, 2)
	assert.Contains(t, err.Error(), "shop_id: is required")
	assert.Contains(t, err.Error(), "items: must not be empty")
}

func TestInternalPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Internal(cause)

	assert.Equal(t, "internal error", err.Message)
	assert.ErrorIs(t, err, cause)
}
