package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"applytrack/internal/config"
	"applytrack/internal/logging"
	"applytrack/internal/tracker"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

// UploadResumeHandler handles POST /api/resumes/upload. The body is a
// multipart form with the file under "resume" and the owner under "userId".
func UploadResumeHandler(cfg *config.Config, svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := requestID(c)
		logger := logging.GetGlobalLogger()

		file, err := c.FormFile("resume")
		if err != nil {
			return errorResponse(c, utils.NewValidationError("resume file is required"))
		}
		if file.Size > cfg.Upload.MaxSize {
			return errorResponse(c, utils.NewValidationError(
				fmt.Sprintf("file is %d bytes, the limit is %d", file.Size, cfg.Upload.MaxSize)))
		}

		src, err := file.Open()
		if err != nil {
			return errorResponse(c, utils.NewValidationError("cannot read uploaded file: "+err.Error()))
		}
		defer src.Close()

		data, err := io.ReadAll(io.LimitReader(src, cfg.Upload.MaxSize+1))
		if err != nil {
			return errorResponse(c, utils.NewValidationError("cannot read uploaded file: "+err.Error()))
		}
		if int64(len(data)) > cfg.Upload.MaxSize {
			return errorResponse(c, utils.NewValidationError("file exceeds the upload limit"))
		}

		logger.Info("Processing resume upload", map[string]interface{}{
			"request_id": id,
			"filename":   file.Filename,
			"size":       len(data),
		})

		resume, err := svc.UploadResume(c.Request().Context(), tracker.UploadInput{
			UserID:      c.FormValue("userId"),
			Filename:    file.Filename,
			ContentType: file.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, resume)
	}
}

// ListResumesHandler handles GET /api/resumes/:userId
func ListResumesHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		resumes, err := svc.ListResumes(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, resumes)
	}
}

// UpdateResumeHandler handles PATCH /api/resumes/:id
func UpdateResumeHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var update models.ResumeUpdate
		if err := bindRequest(c, &update); err != nil {
			return errorResponse(c, err)
		}
		resume, err := svc.UpdateResume(c.Request().Context(), c.Param("id"), update)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, resume)
	}
}

// ResumeHistoryHandler handles GET /api/resumes/:id/history
func ResumeHistoryHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		h, err := svc.ResumeHistory(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, h)
	}
}
