// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/pkg/apperror"
)

// NewEcho returns a bare echo instance using the production error handler.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return e
}

// DiscardLogger is a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Response is a recorded response.
type Response struct {
	*httptest.ResponseRecorder
}

// JSON decodes the body into v and fails the test on error.
func (r Response) JSON(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), v), "body: %s", r.Body.String())
}

// ErrorCode returns error.code from an apperror envelope.
func (r Response) ErrorCode(t *testing.T) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	r.JSON(t, &body)
	return body.Error.Code
}

// Do sends a request through e. A non-nil body is JSON-encoded unless it is
// url.Values, which is sent as a form.
func Do(e *echo.Echo, method, path string, body any) Response {
	var rdr io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case url.Values:
		rdr = strings.NewReader(b.Encode())
		contentType = echo.MIMEApplicationForm
	case string:
		rdr = strings.NewReader(b)
		contentType = echo.MIMEApplicationJSON
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		rdr = strings.NewReader(string(raw))
		contentType = echo.MIMEApplicationJSON
	}

	req := httptest.NewRequest(method, path, rdr)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return Response{rec}
}

// Status asserts the response code, printing the body on mismatch.
func (r Response) Status(t *testing.T, want int) Response {
	t.Helper()
	require.Equal(t, want, r.Code, "body: %s", r.Body.String())
	return r
}
