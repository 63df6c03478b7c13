package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func createValidJWT(userID, email string, isStaff bool) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"email":    email,
		"is_staff": isStaff,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, _ := token.SignedString([]byte(testSecret))
	return tokenString
}

const testUserID = "550e8400-e29b-41d4-a716-446655440000"

func runMiddleware(t *testing.T, req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	handler := JWTMiddleware(JWTConfig{Secret: testSecret, Logger: zap.NewNop()})(next)

	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func TestJWTMiddleware_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+createValidJWT(testUserID, "test@example.com", true))

	rec := runMiddleware(t, req, func(c echo.Context) error {
		user := GetUserFromContext(c)
		require.NotNil(t, user)
		assert.Equal(t, testUserID, user.ID.String())
		assert.Equal(t, "test@example.com", user.Email)
		assert.True(t, user.IsStaff)
		assert.Equal(t, testUserID, c.Get("user_id"))
		return okHandler(c)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_SessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: createValidJWT(testUserID, "", false)})

	rec := runMiddleware(t, req, func(c echo.Context) error {
		user := GetUserFromContext(c)
		require.NotNil(t, user)
		assert.False(t, user.IsStaff)
		return okHandler(c)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_AnonymousPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	rec := runMiddleware(t, req, func(c echo.Context) error {
		assert.Nil(t, GetUserFromContext(c))
		assert.False(t, GetUserFromContext(c).IsAuthenticated())
		return okHandler(c)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, _ := expired.SignedString([]byte(testSecret))

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "invalid-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	badSubjectToken, _ := badSubject.SignedString([]byte(testSecret))

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": testUserID})
	wrongKeyToken, _ := wrongKey.SignedString([]byte("other-secret"))

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing bearer prefix", header: "Token abc", code: "INVALID_AUTH_FORMAT"},
		{name: "empty bearer", header: "Bearer ", code: "INVALID_AUTH_FORMAT"},
		{name: "garbage token", header: "Bearer not.a.jwt", code: "INVALID_TOKEN"},
		{name: "expired", header: "Bearer " + expiredToken, code: "INVALID_TOKEN"},
		{name: "subject not a uuid", header: "Bearer " + badSubjectToken, code: "INVALID_TOKEN"},
		{name: "wrong signing key", header: "Bearer " + wrongKeyToken, code: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.header)

			rec := runMiddleware(t, req, func(c echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestRequireStaff(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{name: "anonymous", expected: http.StatusUnauthorized},
		{name: "attendee", token: createValidJWT(testUserID, "", false), expected: http.StatusForbidden},
		{name: "staff", token: createValidJWT(testUserID, "", true), expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rec := runMiddleware(t, req, RequireStaff(okHandler))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
