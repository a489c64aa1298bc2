package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken(7, "So11111111111111111111111111111111111111112")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "So11111111111111111111111111111111111111112", claims.WalletAddress)

	_, err = ValidateToken(token + "tampered")
	assert.Error(t, err)
}

func TestWorkerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(WorkerMiddleware("secret-worker-token"))
	router.GET("/ping", func(c *gin.Context) {
		assert.True(t, IsWorker(c))
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer secret-worker-token", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "secret-worker-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitJWT("test-secret")

	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/me", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		require.True(t, ok)
		assert.Equal(t, uint(12), userID)
		c.Status(http.StatusOK)
	})

	token, err := GenerateToken(12, "Vote111111111111111111111111111111111111111")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
