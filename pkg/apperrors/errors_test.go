package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFollowsWrappedKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: message is empty", ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("session: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: send in flight", ErrConflict), http.StatusConflict},
		{ErrNotAuthenticated, http.StatusUnauthorized},
		{ErrUnauthorized, http.StatusForbidden},
		{fmt.Errorf("ark: %w", ErrServiceUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "error %v", tc.err)
	}
}
