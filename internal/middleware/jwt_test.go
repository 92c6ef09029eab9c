package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

const testSecret = "unit-test-secret"

func doRequest(t *testing.T, mws []echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestJWTAuth(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 7, "USER", 5)
	require.NoError(t, err)

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+access.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"USER"`)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth("other-secret")}, "Bearer "+access.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired, err := utils.NewAccessToken(testSecret, 7, "USER", -5)
		require.NoError(t, err)
		rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+expired.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	issue := func(role string) string {
		tok, err := utils.NewAccessToken(testSecret, 7, role, 5)
		require.NoError(t, err)
		return "Bearer " + tok.Token
	}
	chain := func(roles ...string) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(roles...)}
	}

	t.Run("allowed role passes", func(t *testing.T) {
		rec := doRequest(t, chain("ADMIN"), issue("ADMIN"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed role is forbidden", func(t *testing.T) {
		rec := doRequest(t, chain("ADMIN"), issue("USER"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("multiple roles accepted", func(t *testing.T) {
		rec := doRequest(t, chain("USER", "ADMIN"), issue("USER"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing role claim is forbidden", func(t *testing.T) {
		rec := doRequest(t, []echo.MiddlewareFunc{RequireRole("USER")}, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
