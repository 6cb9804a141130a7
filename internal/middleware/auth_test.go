package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/stowagehq/stowage/internal/auth"
)

type staticLock struct {
	enabled bool
}

func (s staticLock) LockEnabled(context.Context) (bool, error) {
	return s.enabled, nil
}

func lockRouter(t *testing.T, enabled bool) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("middleware-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(AccessLock(tokens, staticLock{enabled: enabled}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	return r, tokens
}

func TestAccessLockDisabledPassesThrough(t *testing.T) {
	router, _ := lockRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAccessLockEnabledRejectsMissingToken(t *testing.T) {
	router, _ := lockRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessLockEnabledAcceptsBearerToken(t *testing.T) {
	router, tokens := lockRouter(t, true)

	token, err := tokens.Issue()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAccessLockRejectsMalformedHeader(t *testing.T) {
	router, tokens := lockRouter(t, true)

	token, err := tokens.Issue()
	require.NoError(t, err)

	for _, header := range []string{token, "Basic " + token, "Bearer"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}
