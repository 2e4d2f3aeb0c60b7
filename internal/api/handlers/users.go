package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"applytrack/internal/tracker"
	"applytrack/pkg/models"
)

// CreateUserHandler handles POST /api/users
func CreateUserHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CreateUserRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		user, err := svc.CreateUser(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, user)
	}
}

// GetUserHandler handles GET /api/users/:id
func GetUserHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := svc.GetUser(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, user)
	}
}
