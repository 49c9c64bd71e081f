package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskboard/taskboard-api/internal/api/middleware"
	"github.com/taskboard/taskboard-api/internal/core/domain"
)

// ctxUserID extracts the user id injected by the Session middleware.
// A handler reached without it means the route was wired without the
// middleware; fail closed as unauthenticated.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}
