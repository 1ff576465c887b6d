package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type identityWallMiddlewareHeaders struct {
	Authorization string `header:"authorization"`
}

var echoDefaultBinder = &echo.DefaultBinder{}

type MiddlewareFactory func(echo.HandlerFunc) echo.HandlerFunc

type identityResolver interface {
	TokenIdentity(ctx context.Context, insecureToken string) (string, error)
}

const _USERNAME_CONTEXT_KEY = "USERNAME_CONTEXT"

func WithUsername(c echo.Context) string {
	return c.Get(_USERNAME_CONTEXT_KEY).(string)
}

// IdentityWallFactoryMiddleware rejects requests without a valid Bearer
// token and stores the resolved username on the echo context.
func IdentityWallFactoryMiddleware(resolver identityResolver) MiddlewareFactory {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			headers := new(identityWallMiddlewareHeaders)

			if err := echoDefaultBinder.BindHeaders(c, headers); err != nil {
				return c.JSON(http.StatusInternalServerError, &errResponse{
					Error: "Unable bind headers to pass identity wall",
				})
			}

			insecureToken := strings.TrimPrefix(headers.Authorization, "Bearer ")

			if headers.Authorization == "" || headers.Authorization == insecureToken {
				return c.JSON(http.StatusForbidden, &errResponse{
					Error: "Access denied. No token provided.",
				})
			}

			username, err := resolver.TokenIdentity(c.Request().Context(), insecureToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, &errResponse{
					Error: "Invalid token.",
				})
			}

			c.Set(_USERNAME_CONTEXT_KEY, username)

			return next(c)
		}
	}
}
