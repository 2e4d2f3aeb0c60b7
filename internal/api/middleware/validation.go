package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

// RequestValidation assigns a request id and rejects oversized bodies.
// Multipart uploads are allowed up to uploadLimit, everything else up to 1MB.
func RequestValidation(uploadLimit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set("request_id", requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			limit := int64(1024 * 1024)
			if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
				// room for the multipart envelope around the file
				limit = uploadLimit + 64*1024
			}

			if c.Request().ContentLength > limit {
				return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Error:     "request_too_large",
					Message:   "Request body too large",
					RequestID: requestID,
					Timestamp: time.Now().UTC(),
				})
			}
			if c.Request().Body != nil {
				c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, limit)
			}

			return next(c)
		}
	}
}
