package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskboard/taskboard-api/internal/core/domain"
	"github.com/taskboard/taskboard-api/internal/core/ports"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "token"

// UserIDKey is the echo context key the resolved user id is stored under.
const UserIDKey = "user_id"

// Session resolves the session cookie to a user id and injects it into the
// request context. It performs no store access: a valid signature and an
// unexpired timestamp are the whole check. Missing, malformed, and expired
// tokens all short-circuit with the same unauthenticated error.
func Session(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return domain.ErrUnauthorized
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
