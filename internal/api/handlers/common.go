package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	"applytrack/internal/api/validation"
	"applytrack/internal/logging"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

var requestValidator = validation.New()

func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	id := utils.GenerateRequestID()
	c.Set("request_id", id)
	return id
}

// bindRequest decodes the JSON body into req and runs its validate tags
func bindRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return utils.NewValidationError("invalid request body: " + err.Error())
	}
	if err := requestValidator.Struct(req); err != nil {
		return utils.NewValidationError(validation.Describe(err))
	}
	return nil
}

// errorResponse renders err as an ErrorResponse with the status its kind maps to.
// Unexpected errors are logged with their cause and rendered generically.
func errorResponse(c echo.Context, err error) error {
	ce := utils.AsCustomError(err)
	id := requestID(c)

	fields := map[string]interface{}{
		"request_id": id,
		"method":     c.Request().Method,
		"path":       c.Path(),
		"kind":       ce.Kind,
		"error":      err.Error(),
	}
	if cause := ce.Unwrap(); cause != nil {
		fields["cause"] = cause.Error()
	}
	logger := logging.GetGlobalLogger()
	if ce.Code >= 500 {
		logger.Error("Request failed", fields)
	} else {
		logger.Debug("Request rejected", fields)
	}

	message := ce.Message
	if ce.Kind != utils.KindUnexpected && ce.Detail != "" {
		message = ce.Error()
	}

	return c.JSON(ce.Code, models.ErrorResponse{
		Error:     ce.Kind,
		Message:   message,
		RequestID: id,
		Timestamp: time.Now().UTC(),
	})
}
