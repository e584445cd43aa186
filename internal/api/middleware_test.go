package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"localmart/internal/auth"
	"localmart/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedRouter(t *testing.T, tokens *auth.TokenManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", authMiddleware(tokens), func(c *gin.Context) {
		claims := mustClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "role": claims.Role})
	})
	return router
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newAuthedRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no token")
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newAuthedRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not valid")
}

func TestAuthMiddlewareRejectsForeignSecret(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	other := auth.NewTokenManager("other-secret", time.Hour)

	foreign, err := other.Issue(42, models.RoleCustomer)
	require.NoError(t, err)

	router := newAuthedRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewarePassesClaimsThrough(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	token, err := tokens.Issue(42, models.RoleShopOwner)
	require.NoError(t, err)

	router := newAuthedRouter(t, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), `"role":"shop_owner"`)
}
