package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-site-api/internal/middleware"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &fakeAuth{}
	h := NewAuthHandler(auth)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(`{"email":"admin@faculty.test","password":"secret"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("User-Agent", "test-agent")
	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"signed-token"`)
	assert.Equal(t, "test-agent", auth.loginReq.UserAgent)
	assert.Equal(t, "admin@faculty.test", auth.loginReq.Email)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuth{loginErr: appErrors.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(`{"email":"admin@faculty.test","password":"wrong"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(`{`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerMeAndLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &fakeAuth{}
	h := NewAuthHandler(auth)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c.Set(middleware.ContextUserKey, testAdmin)
	h.Me(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"admin@faculty.test"`)
	assert.NotContains(t, rec.Body.String(), "s-1")

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	c.Set(middleware.ContextUserKey, testAdmin)
	h.Logout(c)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, auth.signedOut, 1)
	assert.Equal(t, "s-1", auth.signedOut[0].SessionID)
}
