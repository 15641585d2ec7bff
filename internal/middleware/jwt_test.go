package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "leo"}
}

func viewerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if viewer, ok := GetViewerFromContext(r.Context()); ok {
			w.Write([]byte(viewer.Username))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func TestTokenRoundTrip(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)
	user := testUser()

	token, err := sessions.GenerateToken(user)
	require.NoError(t, err)

	claims, err := sessions.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "leo", claims.Username)

	_, err = NewSessions("other-secret", time.Hour, false).ValidateToken(token)
	assert.Error(t, err)
	assert.True(t, utils.IsAuthError(err))
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidToken))
}

func TestExpiredToken(t *testing.T) {
	sessions := NewSessions("secret", time.Nanosecond, false)
	token, err := sessions.GenerateToken(testUser())
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = sessions.ValidateToken(token)
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.HTTPStatus(err))
}

func TestAuthenticateCookieAndBearer(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)
	handler := sessions.Authenticate(viewerEcho())

	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Login(rec, testUser()))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "leo", rec.Body.String())

	token, err := sessions.GenerateToken(testUser())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "leo", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestLogoutExpiresCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSessions("secret", time.Hour, false).Logout(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestRequireLoginRedirects(t *testing.T) {
	handler := RequireLogin(viewerEcho())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/new/?x=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fnew%2F%3Fx%3D1", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/new/", nil)
	req = req.WithContext(SetViewerInContext(req.Context(), &Viewer{ID: uuid.New(), Username: "leo"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leo", rec.Body.String())
}

func TestRecoverAndLog(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	metrics := utils.NewMetricsCollector()

	onPanic := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := RequestLogger(logger, metrics)(Recover(logger, onPanic)(panicky))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/500/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "panic serving request")
	assert.Contains(t, logs.String(), "status=500")
}
