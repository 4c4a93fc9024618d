package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseAndHidesIt(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(cause, "save settings")

	require.Equal(t, "save settings: disk full", err.Error())
	require.Equal(t, "save settings", err.Message)
	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
	require.ErrorIs(t, err, cause)
}

func TestCopiesLeaveSharedValuesUntouched(t *testing.T) {
	with := ErrMailDelivery.WithInternal(stdErrors.New("relay down"))
	renamed := ErrBadRequest.WithMessage("Please supply all information.")

	require.NotSame(t, ErrMailDelivery, with)
	require.Nil(t, ErrMailDelivery.Internal)
	require.Equal(t, "Invalid request", ErrBadRequest.Message)
	require.Equal(t, "Please supply all information.", renamed.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	transport := stdErrors.New("smtp: dial relay:25: connection refused")
	err := fmt.Errorf("contact: %w", ErrMailDelivery.WithInternal(transport))

	require.ErrorIs(t, err, ErrMailDelivery)
	require.ErrorIs(t, err, transport)
	require.NotErrorIs(t, err, ErrInternalServer)
	require.ErrorIs(t, NewBadRequest("bad slug"), ErrBadRequest)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))
	require.Same(t, ErrNotFound, FromError(ErrNotFound))

	wrapped := fmt.Errorf("handler: %w", ErrConflict)
	require.Same(t, ErrConflict, FromError(wrapped))

	raw := stdErrors.New("raw")
	out := FromError(raw)
	require.Equal(t, ErrInternalServer.Code, out.Code)
	require.ErrorIs(t, out, raw)
}
