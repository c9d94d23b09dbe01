package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/errors"
	"github.com/johnquangdev/acta-generator/pkg/jwt"
)

// OperatorContextKey holds the subject of the operator token on the echo context
const OperatorContextKey = "operator"

// OperatorAuth requires a valid operator bearer token
func OperatorAuth(manager *jwt.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return errors.ErrUnauthorized("Missing authorization token")
			}

			claims, err := manager.ValidateOperatorToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("operator token rejected",
						zap.String("client", c.RealIP()),
						zap.String("path", c.Path()),
						zap.Error(err),
					)
				}
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
				return errors.ErrUnauthorized("Invalid or expired token")
			}

			c.Set(OperatorContextKey, claims.Subject)
			return next(c)
		}
	}
}

// bearerToken expects "Bearer <token>"
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
