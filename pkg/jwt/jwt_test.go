package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ramen-log/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		ExpireTime: time.Hour,
		Issuer:     "ramen-log-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken(42, "taro")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "taro", claims.Username)
}

func TestGenerateRequiresUser(t *testing.T) {
	_, err := newTestService().GenerateToken(0, "nobody")
	assert.Error(t, err)
}

func TestValidateRejectsForeignToken(t *testing.T) {
	other := NewJWTService(config.JWTConfig{Secret: "other", ExpireTime: time.Hour, Issuer: "ramen-log-test"})
	token, err := other.GenerateToken(1, "x")
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", ExpireTime: -time.Minute, Issuer: "ramen-log-test"})
	token, err := svc.GenerateToken(1, "x")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService()

	r := gin.New()
	r.GET("/me", svc.AuthMiddleware(), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "username": GetUsername(c)})
	})

	token, err := svc.GenerateToken(7, "hanako")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"username":"hanako"}`, w.Body.String())
			}
		})
	}
}
