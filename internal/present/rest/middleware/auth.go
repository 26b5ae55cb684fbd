package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	token string
}

// NewAuthMiddleware guards routes with a shared bearer token. An empty token disables the check.
func NewAuthMiddleware(token string) *AuthMiddleware {
	return &AuthMiddleware{
		token: token,
	}
}

func (s *AuthMiddleware) RequireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.token == "" {
			return next(c)
		}

		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireToken")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		split := strings.Split(authHeader, " ")
		if len(split) != 2 {
			span.RecordError(fmt.Errorf("invalid authentication header"))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}

		authType, token := split[0], split[1]
		if authType != "Bearer" {
			span.RecordError(fmt.Errorf("only Bearer is acceptable"))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			span.RecordError(fmt.Errorf("token mismatch"))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}

		span.SetAttributes(attribute.Bool("Authorized", true))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
