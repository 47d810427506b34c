package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func createValidJWT(userID, email, role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	})

	tokenString, _ := token.SignedString([]byte("test-secret"))
	return tokenString
}

func TestJWTMiddleware_SuccessfulAuthentication(t *testing.T) {
	logger := zap.NewNop()

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	// Test handler that checks if user is authenticated
	handler := middleware(func(c echo.Context) error {
		user, err := GetUserFromContext(c)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", user.UserID)
		assert.Equal(t, "afghanistan", user.BusinessArea)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "admin", user.Role)
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+createValidJWT("user-1", "test@example.com", "admin"))
	req.Header.Set("X-Business-Area", "afghanistan")
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_MissingAuthorizationHeader(t *testing.T) {
	logger := zap.NewNop()

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	handler := middleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	// No Authorization header
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err) // Middleware handles the error response
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_InvalidTokenFormat(t *testing.T) {
	logger := zap.NewNop()

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	handler := middleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "NotBearer token")
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	logger := zap.NewNop()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	})
	expired, _ := token.SignedString([]byte("test-secret"))

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	handler := middleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	req.Header.Set("X-Business-Area", "afghanistan")
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_MissingBusinessArea(t *testing.T) {
	logger := zap.NewNop()

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	handler := middleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+createValidJWT("user-1", "test@example.com", "admin"))
	// No X-Business-Area header
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJWTMiddleware_SkipPaths(t *testing.T) {
	logger := zap.NewNop()

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{"/health"},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	handler := middleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// No auth headers at all
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	logger := zap.NewNop()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte("other-secret"))

	config := JWTConfig{
		Secret:    "test-secret",
		Logger:    logger,
		SkipPaths: []string{},
	}

	e := echo.New()
	middleware := JWTMiddleware(config)

	handler := middleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set("X-Business-Area", "afghanistan")
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
