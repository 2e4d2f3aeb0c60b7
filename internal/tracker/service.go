// Package tracker implements the job application workflows: resume upload
// and analysis, matching, applying (single and bulk), artifact generation and
// status tracking. It sits between the HTTP handlers and the storage and
// analysis gateways and is the only place their errors are translated into
// user-facing ones.
package tracker

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"applytrack/internal/config"
	"applytrack/internal/document"
	"applytrack/internal/events"
	"applytrack/internal/history"
	"applytrack/internal/llm/processors"
	"applytrack/internal/logging"
	"applytrack/internal/storage"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

// Analyzer is the analysis gateway as seen by the workflows
type Analyzer interface {
	AnalyzeResume(ctx context.Context, resumeText string) (*models.ResumeAnalysis, error)
	AnalyzeJobMatch(ctx context.Context, resumeText, jobText, jobTitle string) (*models.JobMatchAnalysis, error)
	GenerateCoverLetter(ctx context.Context, resumeText, jobText, jobTitle, company string) (string, error)
	GenerateInterviewQuestions(ctx context.Context, jobText, jobTitle string) (*models.InterviewQuestions, error)
	AnalyzeSkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapAnalysis, error)
}

// Archiver stores original upload bytes and returns where they can be fetched
type Archiver interface {
	Put(ctx context.Context, userID, filename, contentType string, data []byte) (string, error)
}

// HistoryRecorder keeps the per-resume analysis trail
type HistoryRecorder interface {
	Record(ctx context.Context, resumeID string, entry models.AnalysisHistoryEntry) error
	Get(ctx context.Context, resumeID string) (*models.AnalysisHistory, error)
}

// EventPublisher announces application lifecycle changes
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data interface{}) error
}

// Service runs every workflow. Archive, history and events are side channels:
// their failures are logged and never fail the workflow.
type Service struct {
	store            storage.Store
	analyzer         Analyzer
	archive          Archiver
	history          HistoryRecorder
	events           EventPublisher
	cleaner          *processors.HTMLCleaner
	defaultThreshold int
	logger           logging.Logger
}

// Option configures optional collaborators
type Option func(*Service)

// WithArchive stores uploaded files through a
func WithArchive(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// WithHistory replaces the in-process analysis history
func WithHistory(h HistoryRecorder) Option {
	return func(s *Service) { s.history = h }
}

// WithEvents publishes lifecycle events through p
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// NewService wires the workflows over a store and an analyzer
func NewService(store storage.Store, analyzer Analyzer, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:            store,
		analyzer:         analyzer,
		history:          history.NewMemoryHistory(cfg.Redis.MaxEntries),
		events:           events.Noop{},
		cleaner:          processors.NewHTMLCleaner(),
		defaultThreshold: cfg.BulkApply.DefaultThreshold,
		logger:           logging.GetGlobalLogger().WithField("component", "tracker"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storeError maps a storage failure onto the error taxonomy
func storeError(entity string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NewNotFoundError(entity)
	}
	return utils.NewUnexpectedError(err)
}

func analysisError(err error) error {
	return utils.NewAnalysisUnavailableError(err)
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return utils.NewValidationError(name + " is required")
	}
	return nil
}

func (s *Service) loadResume(ctx context.Context, id string) (*models.Resume, error) {
	if err := requireID("resumeId", id); err != nil {
		return nil, err
	}
	resume, err := s.store.GetResume(ctx, id)
	if err != nil {
		return nil, storeError("Resume", err)
	}
	return resume, nil
}

func (s *Service) loadJob(ctx context.Context, id string) (*models.JobDescription, error) {
	if err := requireID("jobDescriptionId", id); err != nil {
		return nil, err
	}
	job, err := s.store.GetJobDescription(ctx, id)
	if err != nil {
		return nil, storeError("Job description", err)
	}
	return job, nil
}

func (s *Service) recordHistory(ctx context.Context, resumeID string, entry models.AnalysisHistoryEntry) {
	if err := s.history.Record(ctx, resumeID, entry); err != nil {
		s.logger.Warn("Failed to record analysis history", map[string]interface{}{
			"resume_id": resumeID,
			"kind":      entry.Kind,
			"error":     err.Error(),
		})
	}
}

func (s *Service) publish(ctx context.Context, routingKey string, data interface{}) {
	if err := s.events.Publish(ctx, routingKey, data); err != nil {
		s.logger.Warn("Failed to publish event", map[string]interface{}{
			"routing_key": routingKey,
			"error":       err.Error(),
		})
	}
}

// Users

// CreateUser registers a user with a bcrypt-hashed password
func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, utils.NewValidationError("username is required")
	}
	if req.Password == "" {
		return nil, utils.NewValidationError("password is required")
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, utils.NewValidationError("username is already taken")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewUnexpectedError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewValidationError("password cannot be hashed: " + err.Error())
	}

	user, err := s.store.CreateUser(ctx, &models.User{Username: username, Credential: string(hash)})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, utils.NewValidationError("username is already taken")
		}
		return nil, utils.NewUnexpectedError(err)
	}

	s.logger.Info("User created", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError("User", err)
	}
	return user, nil
}

// Resumes

// UploadInput is one uploaded resume file
type UploadInput struct {
	UserID      string
	Filename    string
	ContentType string
	Data        []byte
}

// UploadResume extracts the file's text, analyzes it and stores the merged
// resume. Nothing is stored when extraction or analysis fails.
func (s *Service) UploadResume(ctx context.Context, in UploadInput) (*models.Resume, error) {
	if err := requireID("userId", in.UserID); err != nil {
		return nil, err
	}

	doc, err := document.Extract(in.Filename, in.ContentType, in.Data)
	if err != nil {
		return nil, utils.NewValidationError(err.Error())
	}

	result, err := s.analyzer.AnalyzeResume(ctx, doc.Text)
	if err != nil {
		return nil, analysisError(err)
	}

	resume := &models.Resume{
		UserID:      in.UserID,
		Filename:    in.Filename,
		Content:     doc.Text,
		Skills:      utils.CloneStrings(result.Skills),
		Experience:  result.Experience,
		Education:   result.Education,
		ATSScore:    result.ATSScore,
		Strengths:   utils.CloneStrings(result.Strengths),
		Weaknesses:  utils.CloneStrings(result.Weaknesses),
		Suggestions: result.Suggestions,
	}

	if s.archive != nil {
		url, err := s.archive.Put(ctx, in.UserID, in.Filename, doc.ContentType, in.Data)
		if err != nil {
			s.logger.Warn("Resume archive failed, storing without file url", map[string]interface{}{
				"user_id": in.UserID,
				"error":   err.Error(),
			})
		} else {
			resume.FileURL = url
		}
	}

	stored, err := s.store.CreateResume(ctx, resume)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}

	s.recordHistory(ctx, stored.ID, models.AnalysisHistoryEntry{
		Kind:    history.KindResumeAnalysis,
		Summary: "Resume analyzed",
		Metadata: map[string]interface{}{
			"atsScore":   stored.ATSScore,
			"skillCount": len(stored.Skills),
		},
	})

	s.logger.Info("Resume uploaded", map[string]interface{}{
		"user_id":      in.UserID,
		"resume_id":    stored.ID,
		"content_type": doc.ContentType,
		"ats_score":    stored.ATSScore,
	})
	return stored, nil
}

func (s *Service) ListResumes(ctx context.Context, userID string) ([]models.Resume, error) {
	resumes, err := s.store.ListResumesByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return resumes, nil
}

// UpdateResume applies a partial update
func (s *Service) UpdateResume(ctx context.Context, id string, update models.ResumeUpdate) (*models.Resume, error) {
	if update.ATSScore != nil && (*update.ATSScore < 0 || *update.ATSScore > 100) {
		return nil, utils.NewValidationError("atsScore must be between 0 and 100")
	}
	resume, err := s.store.UpdateResume(ctx, id, update)
	if err != nil {
		return nil, storeError("Resume", err)
	}
	return resume, nil
}

// ResumeHistory returns the recent analyses run against a resume
func (s *Service) ResumeHistory(ctx context.Context, resumeID string) (*models.AnalysisHistory, error) {
	if _, err := s.loadResume(ctx, resumeID); err != nil {
		return nil, err
	}
	h, err := s.history.Get(ctx, resumeID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return h, nil
}

// Job descriptions

// CreateJobDescription stores a job posting; pasted HTML is reduced to text
func (s *Service) CreateJobDescription(ctx context.Context, req models.CreateJobDescriptionRequest) (*models.JobDescription, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}

	content := s.cleaner.Normalize(req.Content)
	if content == "" {
		return nil, utils.NewValidationError("content is required")
	}

	job, err := s.store.CreateJobDescription(ctx, &models.JobDescription{
		UserID:          req.UserID,
		Title:           strings.TrimSpace(req.Title),
		Company:         strings.TrimSpace(req.Company),
		Content:         content,
		RequiredSkills:  utils.CloneStrings(req.RequiredSkills),
		ExperienceLevel: req.ExperienceLevel,
		Location:        req.Location,
		Salary:          req.Salary,
	})
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return job, nil
}

func (s *Service) ListJobDescriptions(ctx context.Context, userID string) ([]models.JobDescription, error) {
	jobs, err := s.store.ListJobDescriptionsByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return jobs, nil
}

// Dashboard computes the headline counts for a user
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.DashboardStats, error) {
	apps, err := s.store.ListApplicationsByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	resumes, err := s.store.ListResumesByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}

	stats := &models.DashboardStats{}
	for _, app := range apps {
		if app.Status.IsActive() {
			stats.ActiveApplications++
		}
		switch app.Status {
		case models.StatusInterview:
			stats.Interviews++
		case models.StatusOffer:
			stats.Offers++
		}
	}

	scores := make([]int, len(resumes))
	for i, r := range resumes {
		scores[i] = r.ATSScore
	}
	stats.AvgATSScore = utils.RoundMean(scores)

	return stats, nil
}
