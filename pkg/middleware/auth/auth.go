package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	AccessCookie = "accessToken"
)

const (
	msgUnauthorized = "Требуется авторизация"
	msgShopOnly     = "Только для магазинов"
)

type failure struct {
	Status bool   `json:"Status"`
	Error  string `json:"Error"`
}

type AuthMiddleware struct {
	JWTSecret []byte
}

func NewAuthMiddleware(secret []byte) *AuthMiddleware {
	return &AuthMiddleware{JWTSecret: secret}
}

// RequireAuth accepts the access token from the accessToken cookie or an
// "Authorization: Bearer" header.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With(zap.String("middleware", "auth"))

		raw := accessToken(c)
		if raw == "" {
			l.Warn("auth_failed", zap.Int("status", http.StatusUnauthorized), zap.String("reason", "missing access token"))
			return c.JSON(http.StatusUnauthorized, failure{Status: false, Error: msgUnauthorized})
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil || claims.Subject == "" {
			l.Warn("auth_failed", zap.Int("status", http.StatusUnauthorized), zap.String("reason", "invalid access token"), zap.Error(err))
			return c.JSON(http.StatusUnauthorized, failure{Status: false, Error: msgUnauthorized})
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, failure{Status: false, Error: msgUnauthorized})
			}
			if !slices.Contains(required, role) {
				return c.JSON(http.StatusForbidden, failure{Status: false, Error: msgShopOnly})
			}
			return next(c)
		}
	}
}

func accessToken(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
