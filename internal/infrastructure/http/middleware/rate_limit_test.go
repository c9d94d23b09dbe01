package middleware

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/acta-generator/errors"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/cache"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return false, 0, stdErrors.New("redis down")
}

func serve(t *testing.T, mw echo.MiddlewareFunc, ip string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/actas", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, err
}

func TestRateLimit(t *testing.T) {
	limiter := cache.NewMemoryLimiter(1, time.Minute)
	defer limiter.Close()
	mw := RateLimit(limiter, nil)

	rec, err := serve(t, mw, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = serve(t, mw, "10.0.0.1")
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPCode)
	assert.Equal(t, errors.ErrorCode_RATE_LIMITED, appErr.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, err = serve(t, mw, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rec, err := serve(t, RateLimit(brokenLimiter{}, nil), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
