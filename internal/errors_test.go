package internal

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		kind Kind
		code int
	}{
		{"not found", ErrNotFound(), KindNotFound, http.StatusNotFound},
		{"not authorized", ErrNotAuthorized(), KindNotAuthorized, http.StatusUnauthorized},
		{"already authorized", ErrAlreadyAuthorized(), KindAlreadyAuthorized, http.StatusForbidden},
		{"bad implementation", ErrBadImplementation(), KindBadImplementation, http.StatusInternalServerError},
		{"rate limited", ErrRateLimitExceeded(time.Minute), KindRateLimitExceeded, http.StatusTooManyRequests},
		{"filter denied", ErrFilterDenied("spam"), KindFilterDenied, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.kind, tt.err.Kind)
			require.Equal(t, tt.code, tt.err.Code)
			require.NotEmpty(t, tt.err.Public)
		})
	}
}

func TestErrorOptions(t *testing.T) {
	t.Parallel()

	t.Run("internal message is used for logging only", func(t *testing.T) {
		t.Parallel()

		err := ErrNotFound(WithInternal("no route for /x#GET"))
		require.Equal(t, "no route for /x#GET", err.Error())
		require.Equal(t, "resource not found", err.Public)
	})

	t.Run("domain level flag", func(t *testing.T) {
		t.Parallel()

		require.False(t, ErrNotAuthorized().DomainLevel)
		require.True(t, ErrNotAuthorized(WithDomainLevel()).DomainLevel)
	})

	t.Run("code override for filters", func(t *testing.T) {
		t.Parallel()

		err := ErrFilterDenied("quota", WithCode(http.StatusUnprocessableEntity))
		require.Equal(t, http.StatusUnprocessableEntity, err.Code)
		require.Equal(t, "quota", err.Filter)
	})

	t.Run("rate limit carries wait time", func(t *testing.T) {
		t.Parallel()

		err := ErrRateLimitExceeded(30 * time.Second)
		require.Equal(t, 30*time.Second, err.RetryAfter)
	})
}

func TestAsError(t *testing.T) {
	t.Parallel()

	require.Nil(t, AsError(nil))
	require.Nil(t, AsError(errors.New("plain")))
	require.NotNil(t, AsError(ErrNotFound()))
}
