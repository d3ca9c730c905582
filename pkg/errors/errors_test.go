package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeSuccess, http.StatusOK},
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeIncompletePage, http.StatusBadRequest},
		{CodeEmptyBook, http.StatusBadRequest},
		{CodeSessionNotFound, http.StatusNotFound},
		{CodePageNotFound, http.StatusNotFound},
		{CodeActionInFlight, http.StatusConflict},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeBackendUnavailable, http.StatusBadGateway},
		{CodeBackendCircuitOpen, http.StatusServiceUnavailable},
		{CodeExportFailed, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, codeToHTTPStatus(tc.code), string(tc.code))
	}
}

func TestWithDetail_DoesNotMutatePredefined(t *testing.T) {
	e := ErrInvalidParam.WithDetail("message is required")

	assert.Equal(t, "message is required", e.Detail)
	assert.Empty(t, ErrInvalidParam.Detail)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)
}

func TestAsAppError(t *testing.T) {
	root := stderrors.New("dial tcp: refused")
	wrapped := fmt.Errorf("send message: %w", ErrBackendDown.WithError(root))

	appErr := AsAppError(wrapped)
	assert.Equal(t, CodeBackendUnavailable, appErr.Code)
	assert.True(t, stderrors.Is(appErr, root))
	assert.True(t, HasCode(wrapped, CodeBackendUnavailable))
	assert.False(t, HasCode(root, CodeBackendUnavailable))

	plain := AsAppError(root)
	assert.Equal(t, CodeUnknown, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
}
