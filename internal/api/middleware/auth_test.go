package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuth(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth("secret")(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed, err := IssueToken("secret", "ops-bot", RoleAdmin, time.Hour)
	require.NoError(t, err)

	called := false
	rec := runAuth(t, "Bearer "+signed, func(c echo.Context) error {
		called = true
		assert.Equal(t, "ops-bot", c.Get(CtxSubject))
		assert.Equal(t, RoleAdmin, c.Get(CtxRole))
		return c.NoContent(http.StatusOK)
	})

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, err := IssueToken("secret", "ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)
	otherKey, err := IssueToken("other", "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "role": RoleAdmin}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + expired,
		"wrong key":      "Bearer " + otherKey,
		"no expiry":      "Bearer " + noExp,
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec := runAuth(t, header, mustNotRun(t))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	_, err := IssueToken("", "ops", RoleAdmin, time.Hour)
	assert.Error(t, err)
}
