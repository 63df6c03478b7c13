package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"go.uber.org/zap"
)

// Claims carried by a registration session token.
type Claims struct {
	Email   string `json:"email,omitempty"`
	IsStaff bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// contextKey is used for storing user in context
type contextKey string

const (
	userContextKey contextKey = "authenticated_user"
)

// DefaultCookieName is read when no Authorization header is sent.
const DefaultCookieName = "session_token"

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret     string
	CookieName string
	Logger     *zap.Logger
}

// JWTMiddleware resolves the caller from a bearer token or session cookie.
// Requests without a token pass through anonymously; a card page can still
// be opened with its access code. A token that is present but invalid is
// rejected.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			tokenString, err := extractToken(c, config.CookieName)
			if err != nil {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
					"code":  "INVALID_AUTH_FORMAT",
				})
			}
			if tokenString == "" {
				return next(c)
			}

			user, err := ParseToken(tokenString, config.Secret)
			if err != nil {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired token",
					"code":  "INVALID_TOKEN",
				})
			}

			ctx := context.WithValue(c.Request().Context(), userContextKey, user)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", user.ID.String())

			config.Logger.Debug("User authenticated successfully",
				zap.String("user_id", user.ID.String()),
				zap.Bool("is_staff", user.IsStaff),
				zap.String("path", path))

			return next(c)
		}
	}
}

func extractToken(c echo.Context, cookieName string) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", fmt.Errorf("malformed authorization header")
		}
		return tokenString, nil
	}

	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return "", nil
	}
	return cookie.Value, nil
}

// ParseToken validates an HS256 token and returns the user it names.
func ParseToken(tokenString, secret string) (*model.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("subject is not a user id: %w", err)
	}

	return &model.User{
		ID:      userID,
		Email:   claims.Email,
		IsStaff: claims.IsStaff,
	}, nil
}

// GetUserFromContext returns the authenticated user, or nil for an
// anonymous request.
func GetUserFromContext(c echo.Context) *model.User {
	user, _ := c.Request().Context().Value(userContextKey).(*model.User)
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !GetUserFromContext(c).IsAuthenticated() {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "Authentication required",
				"code":  "AUTH_REQUIRED",
			})
		}
		return next(c)
	}
}

// RequireStaff rejects anonymous requests and those from non-staff users.
func RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireAuth(func(c echo.Context) error {
		if !GetUserFromContext(c).IsStaff {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "Staff access required",
				"code":  "STAFF_REQUIRED",
			})
		}
		return next(c)
	})
}
