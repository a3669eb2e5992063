package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/pkg/token"
)

// Auth validates the bearer access token and injects identity claims into
// the echo context. Refresh tokens are rejected here: they are only accepted
// by the refresh endpoint.
func Auth(tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.VerifyAccess(parts[1])
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				case errors.Is(err, token.ErrWrongTokenKind):
					return echo.NewHTTPError(http.StatusUnauthorized, "access token required")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
			}

			role, _ := claims["role"].(string)
			if !domain.ValidRole(role) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims["sub"])
			c.Set("email", claims["email"])
			c.Set("role", role)
			c.Set("org_id", claims["org_id"])

			return next(c)
		}
	}
}
