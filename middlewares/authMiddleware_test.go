package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	authUtils "nagarseva-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newTestRouter()

	w := doRequest(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newTestRouter()

	w := doRequest(r, "/protected", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "other-secret")
	token, err := authUtils.GenerateToken("64f000000000000000000001", "user")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	r := newTestRouter()

	w := doRequest(r, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := authUtils.GenerateToken("64f000000000000000000001", "user")
	require.NoError(t, err)

	r := newTestRouter()
	w := doRequest(r, "/protected", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "64f000000000000000000001")
}

func TestRequireAdminRejectsUserAndWorker(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newTestRouter()

	for _, role := range []string{"user", "worker"} {
		token, err := authUtils.GenerateToken("64f000000000000000000001", role)
		require.NoError(t, err)

		w := doRequest(r, "/admin", token)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s should be forbidden", role)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := authUtils.GenerateToken("64f000000000000000000002", "admin")
	require.NoError(t, err)

	r := newTestRouter()
	w := doRequest(r, "/admin", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
