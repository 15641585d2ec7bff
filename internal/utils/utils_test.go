package utils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorChain(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := errors.Wrap(NewAppError(ErrDatabase, "failed to load post", cause), "post detail")

	assert.True(t, IsErrorCode(err, ErrDatabase))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "post detail: failed to load post: connection reset", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("post"), http.StatusNotFound},
		{errors.Wrap(NewNotFoundError("user"), "profile"), http.StatusNotFound},
		{NewAppError(ErrForbidden, "not yours", nil), http.StatusForbidden},
		{NewUnauthorizedError("no session"), http.StatusUnauthorized},
		{NewAppError(ErrDuplicate, "taken", nil), http.StatusConflict},
		{NewAppError(ErrInvalidInput, "bad", nil), http.StatusBadRequest},
		{NewActorTimeoutError("PostActor", nil), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
	assert.True(t, IsAuthError(NewUnauthorizedError("x")))
	assert.False(t, IsAuthError(NewNotFoundError("x")))
}

func TestMetricsHandler(t *testing.T) {
	mc := NewMetricsCollector()
	mc.IncrementRequests()
	mc.IncrementErrors()
	mc.AddOperationLatency("memory_follow", 3*time.Millisecond)
	mc.CacheHit()
	mc.CacheMiss()
	mc.CacheMiss()

	rec := httptest.NewRecorder()
	mc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "yatube_http_requests_total 1")
	assert.Contains(t, text, "yatube_http_errors_total 1")
	assert.Contains(t, text, `yatube_page_cache_lookups_total{result="miss"} 2`)
	assert.Contains(t, text, `yatube_operation_duration_seconds_count{operation="memory_follow"} 1`)
	assert.Contains(t, text, "yatube_uptime_seconds ")
	assert.True(t, mc.Uptime() >= 0)
}
