package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds a request context; body is JSON-encoded unless it is a string.
func newContext(e *echo.Echo, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-test")
	return c, rec
}

func authenticate(c echo.Context, userID uuid.UUID) {
	c.Set(UserIDContextKey, userID)
	c.Set(AccessTokenContextKey, "access-token")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	return resp
}

// decodeData unmarshals the data field of a success envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.JSONEq(t, "true", string(envelope["success"]))
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope["data"], out))
	}
	return envelope
}
