package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
)

func TestRespondErrUsesErrorKind(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondErr(resp, fmt.Errorf("%w: session missing", apperrors.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"not found: session missing"}`, resp.Body.String())
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	var dst map[string]any

	err := DecodeJSON(req, &dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
	var dst struct {
		Content string `json:"content"`
	}

	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "hi", dst.Content)
}

func TestSendSSEChunk(t *testing.T) {
	resp := httptest.NewRecorder()
	SetupSSEHeaders(resp)
	SendSSEChunk(resp, resp, map[string]string{"event": "start"})

	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	assert.Equal(t, "data: {\"event\":\"start\"}\n\n", resp.Body.String())
	assert.True(t, resp.Flushed)
}
