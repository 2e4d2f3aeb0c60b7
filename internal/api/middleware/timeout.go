package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// analysisPaths are the routes that wait on the LLM
var analysisPaths = []string{
	"/api/resumes/upload",
	"/api/job-match",
	"/api/cover-letters/generate",
	"/api/interview-questions/generate",
	"/api/skill-gap/analyze",
}

const bulkPath = "/api/bulk-auto-apply"

// TimeoutFor picks the deadline for a request path
func TimeoutFor(path string, standard, analysis, bulk time.Duration) time.Duration {
	if strings.HasPrefix(path, bulkPath) {
		return bulk
	}
	for _, p := range analysisPaths {
		if strings.HasPrefix(path, p) {
			return analysis
		}
	}
	return standard
}

// SelectiveTimeoutConfig puts a deadline on the request context: bulk runs get
// the longest, LLM-backed endpoints the analysis timeout, everything else the standard one.
func SelectiveTimeoutConfig(standard, analysis, bulk time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timeout := TimeoutFor(c.Request().URL.Path, standard, analysis, bulk)
			if timeout <= 0 {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
