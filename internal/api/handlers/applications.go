package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"applytrack/internal/logging"
	"applytrack/internal/tracker"
	"applytrack/pkg/models"
)

// CreateApplicationHandler handles POST /api/applications
func CreateApplicationHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CreateApplicationRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		app, err := svc.Apply(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// ListApplicationsHandler handles GET /api/applications/:userId
func ListApplicationsHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		apps, err := svc.ListApplications(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, apps)
	}
}

// UpdateApplicationStatusHandler handles PATCH /api/applications/:id/status
func UpdateApplicationStatusHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.UpdateApplicationStatusRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		app, err := svc.UpdateApplicationStatus(c.Request().Context(), c.Param("id"), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// AutoApplyHandler handles POST /api/auto-apply
func AutoApplyHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.AutoApplyRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		resp, err := svc.AutoApply(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// BulkAutoApplyHandler handles POST /api/bulk-auto-apply
func BulkAutoApplyHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := requestID(c)
		var req models.BulkAutoApplyRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}

		logging.GetGlobalLogger().Info("Processing bulk auto-apply request", map[string]interface{}{
			"request_id": id,
			"user_id":    req.UserID,
			"resume_id":  req.ResumeID,
		})

		result, err := svc.BulkAutoApply(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// DashboardHandler handles GET /api/dashboard/:userId
func DashboardHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := svc.Dashboard(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}
