package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/alumni-hub-api/internal/middleware"
	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/internal/repository"
	"github.com/noah-isme/alumni-hub-api/internal/service"
	"github.com/noah-isme/alumni-hub-api/pkg/kvstore"
)

func newAuthTestHandler(t *testing.T) (*AuthHandler, *service.AuthService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := service.NewAuthService(
		repository.NewSessionRepository(kvstore.NewMemoryStore(0), "currentUser"),
		nil,
		zap.NewNop(),
		service.AuthConfig{
			AccessTokenSecret: "secret",
			AccessTokenExpiry: time.Hour,
			AdminEmail:        "admin@alumni.edu",
			AdminPasswordHash: string(hash),
		},
	)
	return NewAuthHandler(svc), svc
}

func TestAuthHandlerLogin(t *testing.T) {
	h, svc := newAuthTestHandler(t)

	body := bytes.NewBufferString(`{"role":"admin","email":"admin@alumni.edu","password":"admin123"}`)
	c, rec := newTestContext(http.MethodPost, "/auth/login", body, "")
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	body = bytes.NewBufferString(`{"role":"admin","email":"admin@alumni.edu","password":"nope"}`)
	c, rec = newTestContext(http.MethodPost, "/auth/login", body, "")
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/auth/login", bytes.NewBufferString(`{`), "")
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerSessionAndLogout(t *testing.T) {
	h, svc := newAuthTestHandler(t)

	c, rec := newTestContext(http.MethodGet, "/auth/session", nil, "")
	h.Session(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Role: models.RoleAdmin, Email: "admin@alumni.edu", Password: "admin123"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)

	c, rec = newTestContext(http.MethodGet, "/auth/session", nil, "")
	h.Session(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/auth/session", nil, "")
	c.Set(middleware.ContextUserKey, claims)
	h.Session(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var session models.Session
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &session))
	assert.Equal(t, resp.Session, session)

	c, rec = newTestContext(http.MethodPost, "/auth/logout", nil, "")
	h.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, err = svc.Current(context.Background())
	require.NoError(t, err)

	c, rec = newTestContext(http.MethodPost, "/auth/logout", nil, "")
	c.Set(middleware.ContextUserKey, claims)
	h.Logout(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = svc.Current(context.Background())
	assert.Error(t, err)
}
