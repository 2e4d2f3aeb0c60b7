package tracker

import (
	"context"
	"fmt"

	"applytrack/internal/events"
	"applytrack/internal/history"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

const (
	autoApplyNote    = "Auto-applied via AI Job Tracker"
	autoApplyMessage = "Successfully auto-applied to position"
)

// transitions lists the statuses reachable from each status
var transitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusDraft:     {models.StatusApplied},
	models.StatusApplied:   {models.StatusInterview},
	models.StatusInterview: {models.StatusOffer, models.StatusRejected},
}

// CanTransition reports whether an application may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to models.ApplicationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusChange is the payload of an application.status_changed event
type StatusChange struct {
	ApplicationID string                   `json:"applicationId"`
	UserID        string                   `json:"userId"`
	From          models.ApplicationStatus `json:"from"`
	To            models.ApplicationStatus `json:"to"`
}

func (s *Service) createApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	stored, err := s.store.CreateApplication(ctx, app)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	s.publish(ctx, events.ApplicationCreated, stored)
	return stored, nil
}

// Apply records an application for an existing resume and job description
func (s *Service) Apply(ctx context.Context, req models.CreateApplicationRequest) (*models.Application, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusApplied
	}
	if status != models.StatusDraft && status != models.StatusApplied {
		return nil, utils.NewValidationError(fmt.Sprintf("applications cannot be created with status %q", status))
	}

	match := 0
	if req.MatchPercentage != nil {
		match = *req.MatchPercentage
		if match < 0 || match > 100 {
			return nil, utils.NewValidationError("matchPercentage must be between 0 and 100")
		}
	}

	if _, err := s.loadResume(ctx, req.ResumeID); err != nil {
		return nil, err
	}
	if _, err := s.loadJob(ctx, req.JobDescriptionID); err != nil {
		return nil, err
	}

	return s.createApplication(ctx, &models.Application{
		UserID:           req.UserID,
		ResumeID:         req.ResumeID,
		JobDescriptionID: req.JobDescriptionID,
		Status:           status,
		MatchPercentage:  match,
		InterviewDate:    req.InterviewDate,
		Notes:            req.Notes,
	})
}

func (s *Service) ListApplications(ctx context.Context, userID string) ([]models.Application, error) {
	apps, err := s.store.ListApplicationsByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return apps, nil
}

// AutoApply applies to one job without running a match
func (s *Service) AutoApply(ctx context.Context, req models.AutoApplyRequest) (*models.AutoApplyResponse, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.loadJob(ctx, req.JobDescriptionID); err != nil {
		return nil, err
	}
	if _, err := s.loadResume(ctx, req.ResumeID); err != nil {
		return nil, err
	}

	app, err := s.createApplication(ctx, &models.Application{
		UserID:           req.UserID,
		ResumeID:         req.ResumeID,
		JobDescriptionID: req.JobDescriptionID,
		Status:           models.StatusApplied,
		Notes:            autoApplyNote,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Auto-applied to job", map[string]interface{}{
		"user_id":            req.UserID,
		"application_id":     app.ID,
		"job_description_id": req.JobDescriptionID,
	})
	return &models.AutoApplyResponse{Application: app, Message: autoApplyMessage}, nil
}

// UpdateApplicationStatus moves an application along the pipeline.
// appliedAt is never changed.
func (s *Service) UpdateApplicationStatus(ctx context.Context, id string, req models.UpdateApplicationStatusRequest) (*models.Application, error) {
	if !req.Status.IsValid() {
		return nil, utils.NewValidationError(fmt.Sprintf("unknown status %q", req.Status))
	}

	current, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, storeError("Application", err)
	}
	if !CanTransition(current.Status, req.Status) {
		return nil, utils.NewValidationError(fmt.Sprintf("cannot move application from %s to %s", current.Status, req.Status))
	}

	status := req.Status
	updated, err := s.store.UpdateApplication(ctx, id, models.ApplicationUpdate{
		Status:        &status,
		InterviewDate: req.InterviewDate,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, storeError("Application", err)
	}

	if current.Status != updated.Status {
		s.publish(ctx, events.ApplicationStatusChanged, StatusChange{
			ApplicationID: updated.ID,
			UserID:        updated.UserID,
			From:          current.Status,
			To:            updated.Status,
		})
	}
	return updated, nil
}

// MatchJob compares a resume with a job description. Nothing is persisted
// apart from the history entry.
func (s *Service) MatchJob(ctx context.Context, resumeID, jobID string) (*models.JobMatchAnalysis, error) {
	resume, err := s.loadResume(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.AnalyzeJobMatch(ctx, resume.Content, job.Content, job.Title)
	if err != nil {
		return nil, analysisError(err)
	}
	result.JobDescriptionID = job.ID

	s.recordHistory(ctx, resume.ID, models.AnalysisHistoryEntry{
		Kind:             history.KindJobMatch,
		JobDescriptionID: job.ID,
		Summary:          fmt.Sprintf("%d%% match for %s", result.MatchPercentage, job.Title),
		Metadata: map[string]interface{}{
			"matchPercentage": result.MatchPercentage,
			"missingSkills":   len(result.MissingSkills),
		},
	})
	return result, nil
}
