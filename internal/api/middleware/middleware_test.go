package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutFor(t *testing.T) {
	std, analysis, bulk := time.Second, 2*time.Second, 3*time.Second

	assert.Equal(t, bulk, TimeoutFor("/api/bulk-auto-apply", std, analysis, bulk))
	assert.Equal(t, analysis, TimeoutFor("/api/job-match", std, analysis, bulk))
	assert.Equal(t, analysis, TimeoutFor("/api/resumes/upload", std, analysis, bulk))
	assert.Equal(t, std, TimeoutFor("/api/resumes/u1", std, analysis, bulk))
	assert.Equal(t, std, TimeoutFor("/health", std, analysis, bulk))
}

func TestSelectiveTimeoutSetsDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/job-match", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var deadline time.Time
	var ok bool
	h := SelectiveTimeoutConfig(time.Second, time.Minute, time.Hour)(func(c echo.Context) error {
		deadline, ok = c.Request().Context().Deadline()
		return nil
	})
	require.NoError(t, h(c))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRequestValidationAssignsID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/u1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestValidation(1024)(func(c echo.Context) error {
		assert.NotEmpty(t, c.Get("request_id"))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestValidationKeepsCallerID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestValidation(1024)(func(c echo.Context) error { return nil })
	require.NoError(t, h(c))
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestValidationRejectsLargeJSON(t *testing.T) {
	e := echo.New()
	body := strings.Repeat("x", 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/api/job-descriptions", strings.NewReader(body)).WithContext(context.Background())
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RequestValidation(10 * 1024 * 1024)(func(c echo.Context) error {
		called = true
		return nil
	})
	require.NoError(t, h(c))
	assert.False(t, called)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
