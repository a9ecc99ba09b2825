package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DoJSON sends body (if non-nil) as JSON with an optional bearer token.
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// AssertJSONResponse checks the status code and decodes the body into v.
func AssertJSONResponse(t *testing.T, resp *http.Response, expectedStatus int, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code: %s", string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	if v != nil {
		err = json.Unmarshal(body, v)
		require.NoError(t, err, "failed to unmarshal response: %s", string(body))
	}
}

// AssertErrorResponse verifies the error envelope and that its message
// contains expectedMessage.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	AssertJSONResponse(t, resp, expectedStatus, &envelope)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, expectedMessage, "error message mismatch")
}
