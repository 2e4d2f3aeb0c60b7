package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"applytrack/internal/tracker"
	"applytrack/pkg/models"
)

// CreateJobDescriptionHandler handles POST /api/job-descriptions
func CreateJobDescriptionHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CreateJobDescriptionRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		job, err := svc.CreateJobDescription(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

// ListJobDescriptionsHandler handles GET /api/job-descriptions/:userId
func ListJobDescriptionsHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobs, err := svc.ListJobDescriptions(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, jobs)
	}
}

// JobMatchHandler handles POST /api/job-match
func JobMatchHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.JobMatchRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		match, err := svc.MatchJob(c.Request().Context(), req.ResumeID, req.JobDescriptionID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, match)
	}
}
