package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"applytrack/internal/tracker"
	"applytrack/pkg/models"
)

// GenerateCoverLetterHandler handles POST /api/cover-letters/generate
func GenerateCoverLetterHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.ArtifactRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		letter, err := svc.GenerateCoverLetter(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, letter)
	}
}

func ListCoverLettersHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		letters, err := svc.ListCoverLetters(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, letters)
	}
}

// ApplicationCoverLetterHandler handles GET /api/applications/:id/cover-letter
func ApplicationCoverLetterHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		letter, err := svc.CoverLetterForApplication(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, letter)
	}
}

// GenerateInterviewQuestionsHandler handles POST /api/interview-questions/generate
func GenerateInterviewQuestionsHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.InterviewQuestionsRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		set, err := svc.GenerateInterviewQuestions(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, set)
	}
}

func LatestInterviewQuestionsHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		set, err := svc.LatestInterviewQuestions(c.Request().Context(), c.Param("jobDescriptionId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, set)
	}
}

// AnalyzeSkillGapHandler handles POST /api/skill-gap/analyze
func AnalyzeSkillGapHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.ArtifactRequest
		if err := bindRequest(c, &req); err != nil {
			return errorResponse(c, err)
		}
		gap, err := svc.AnalyzeSkillGap(c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, gap)
	}
}

func ListSkillGapsHandler(svc *tracker.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		gaps, err := svc.ListSkillGaps(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, gaps)
	}
}
