package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/api/handlers"
	"applytrack/internal/config"
	"applytrack/internal/storage"
	"applytrack/internal/tracker"
	"applytrack/pkg/models"
)

// scriptedAnalyzer returns fixed results; job matches are looked up by job title
type scriptedAnalyzer struct {
	matches map[string]int
}

func (a *scriptedAnalyzer) AnalyzeResume(ctx context.Context, text string) (*models.ResumeAnalysis, error) {
	return &models.ResumeAnalysis{
		Skills:      []string{"Python"},
		Experience:  "5 years",
		Education:   "BSc",
		ATSScore:    82,
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: "",
	}, nil
}

func (a *scriptedAnalyzer) AnalyzeJobMatch(ctx context.Context, resumeText, jobText, jobTitle string) (*models.JobMatchAnalysis, error) {
	return &models.JobMatchAnalysis{MatchPercentage: a.matches[jobTitle], SkillsMatch: "1/1", ExperienceMatch: "1/1", MissingSkills: []string{}}, nil
}

func (a *scriptedAnalyzer) GenerateCoverLetter(ctx context.Context, resumeText, jobText, jobTitle, company string) (string, error) {
	return "Dear " + company, nil
}

func (a *scriptedAnalyzer) GenerateInterviewQuestions(ctx context.Context, jobText, jobTitle string) (*models.InterviewQuestions, error) {
	return &models.InterviewQuestions{General: []string{"Why?"}, Technical: []string{}, Behavioral: []string{}}, nil
}

func (a *scriptedAnalyzer) AnalyzeSkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapAnalysis, error) {
	return &models.SkillGapAnalysis{MissingSkills: []string{"Go"}, Priority: models.PriorityLow, Recommendations: "practice"}, nil
}

type testServer struct {
	e        *echo.Echo
	analyzer *scriptedAnalyzer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	store := storage.NewMemoryStore()
	analyzer := &scriptedAnalyzer{matches: map[string]int{}}
	svc := tracker.NewService(store, analyzer, cfg)

	e := echo.New()
	SetupRoutes(e, cfg, svc, map[string]handlers.Probe{"store": store.Ping})
	return &testServer{e: e, analyzer: analyzer}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, userID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userId", userID))
	part, err := w.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestUploadAndListResumes(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "u1", "cv.txt", "Senior engineer with 5 years Python")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resume := decode[models.Resume](t, rec)
	assert.Equal(t, 82, resume.ATSScore)

	rec = s.do(t, http.MethodGet, "/api/resumes/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Resume](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 82, list[0].ATSScore)

	rec = s.do(t, http.MethodGet, "/api/resumes/"+resume.ID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[models.AnalysisHistory](t, rec)
	assert.Len(t, h.Entries, 1)
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userId", "u1"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[models.ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", body.Error)
	assert.NotEmpty(t, body.RequestID)
}

func TestEmptyListsRenderAsArrays(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/api/resumes/nobody",
		"/api/job-descriptions/nobody",
		"/api/applications/nobody",
		"/api/cover-letters/nobody",
		"/api/skill-gaps/nobody",
	} {
		rec := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), path)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	s := newTestServer(t)

	resume := decode[models.Resume](t, s.upload(t, "u1", "cv.txt", "resume text"))

	rec := s.do(t, http.MethodPost, "/api/job-descriptions", models.CreateJobDescriptionRequest{
		UserID: "u1", Title: "Engineer", Company: "Acme", Content: "Build things",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	job := decode[models.JobDescription](t, rec)

	s.analyzer.matches["Engineer"] = 71
	rec = s.do(t, http.MethodPost, "/api/job-match", models.JobMatchRequest{ResumeID: resume.ID, JobDescriptionID: job.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 71, decode[models.JobMatchAnalysis](t, rec).MatchPercentage)

	rec = s.do(t, http.MethodPost, "/api/applications", models.CreateApplicationRequest{
		UserID: "u1", ResumeID: resume.ID, JobDescriptionID: job.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app := decode[models.Application](t, rec)
	assert.Equal(t, models.StatusApplied, app.Status)

	rec = s.do(t, http.MethodPatch, "/api/applications/"+app.ID+"/status", models.UpdateApplicationStatusRequest{Status: models.StatusInterview})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[models.Application](t, rec)
	assert.Equal(t, models.StatusInterview, moved.Status)
	assert.True(t, app.AppliedAt.Equal(moved.AppliedAt))

	rec = s.do(t, http.MethodPatch, "/api/applications/"+app.ID+"/status", models.UpdateApplicationStatusRequest{Status: models.StatusDraft})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/dashboard/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.DashboardStats](t, rec)
	assert.Equal(t, models.DashboardStats{ActiveApplications: 1, Interviews: 1, AvgATSScore: 82}, stats)
}

func TestArtifactsEndpoints(t *testing.T) {
	s := newTestServer(t)
	resume := decode[models.Resume](t, s.upload(t, "u1", "cv.txt", "resume text"))
	job := decode[models.JobDescription](t, s.do(t, http.MethodPost, "/api/job-descriptions", models.CreateJobDescriptionRequest{
		UserID: "u1", Title: "Engineer", Company: "Acme", Content: "Build things",
	}))
	req := models.ArtifactRequest{UserID: "u1", ResumeID: resume.ID, JobDescriptionID: job.ID}

	rec := s.do(t, http.MethodPost, "/api/cover-letters/generate", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	letter := decode[models.CoverLetter](t, rec)
	assert.Equal(t, "Dear Acme", letter.Content)

	rec = s.do(t, http.MethodGet, "/api/applications/"+letter.ApplicationID+"/cover-letter", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, letter.ID, decode[models.CoverLetter](t, rec).ID)

	rec = s.do(t, http.MethodPost, "/api/interview-questions/generate", models.InterviewQuestionsRequest{UserID: "u1", JobDescriptionID: job.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/interview-questions/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Why?"}, decode[models.InterviewQuestionSet](t, rec).Questions)

	rec = s.do(t, http.MethodPost, "/api/skill-gap/analyze", req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PriorityLow, decode[models.SkillGap](t, rec).Priority)
}

func TestBulkAutoApplyEndpoint(t *testing.T) {
	s := newTestServer(t)
	resume := decode[models.Resume](t, s.upload(t, "u1", "cv.txt", "resume text"))
	for _, title := range []string{"Strong", "Weak"} {
		rec := s.do(t, http.MethodPost, "/api/job-descriptions", models.CreateJobDescriptionRequest{
			UserID: "u1", Title: title, Company: "Acme", Content: title + " role",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	s.analyzer.matches["Strong"] = 90
	s.analyzer.matches["Weak"] = 60

	rec := s.do(t, http.MethodPost, "/api/bulk-auto-apply", map[string]interface{}{"userId": "u1", "resumeId": resume.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[models.BulkAutoApplyResult](t, rec)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "Bulk auto-apply completed: 1 applications submitted", result.Message)

	rec = s.do(t, http.MethodPost, "/api/bulk-auto-apply", map[string]interface{}{"userId": "u1", "resumeId": resume.ID, "matchThreshold": 150})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundAndValidationResponses(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auto-apply", models.AutoApplyRequest{UserID: "u1", ResumeID: "r", JobDescriptionID: "j"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[models.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, "Job description not found", body.Message)

	rec = s.do(t, http.MethodPost, "/api/job-match", map[string]string{"resumeId": "r"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[models.ErrorResponse](t, rec).Message, "jobDescriptionId is required")
}

func TestUsersEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users", models.CreateUserRequest{Username: "grace", Password: "hopper-1906"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hopper")
	user := decode[models.User](t, rec)

	rec = s.do(t, http.MethodGet, "/api/users/"+user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grace", decode[models.User](t, rec).Username)

	rec = s.do(t, http.MethodPost, "/api/users", models.CreateUserRequest{Username: "grace", Password: "another-pass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
