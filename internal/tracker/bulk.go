package tracker

import (
	"context"
	"fmt"
	"time"

	"applytrack/internal/events"
	"applytrack/internal/history"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

const (
	reasonAlreadyApplied  = "Already applied"
	reasonProcessingError = "Processing error"
)

type pairKey struct {
	resumeID string
	jobID    string
}

// appliedIndex is the set of (resume, job) pairs that already have an application.
// It is built once per run and extended as the run creates applications.
type appliedIndex map[pairKey]struct{}

func newAppliedIndex(apps []models.Application) appliedIndex {
	idx := make(appliedIndex, len(apps))
	for _, app := range apps {
		idx.add(app.ResumeID, app.JobDescriptionID)
	}
	return idx
}

func (idx appliedIndex) has(resumeID, jobID string) bool {
	_, ok := idx[pairKey{resumeID, jobID}]
	return ok
}

func (idx appliedIndex) add(resumeID, jobID string) {
	idx[pairKey{resumeID, jobID}] = struct{}{}
}

// BulkCompleted is the payload of a bulk_apply.completed event
type BulkCompleted struct {
	UserID    string `json:"userId"`
	ResumeID  string `json:"resumeId"`
	Threshold int    `json:"threshold"`
	Applied   int    `json:"applied"`
	Skipped   int    `json:"skipped"`
}

// BulkAutoApply matches the resume against every job description the user
// has and applies to those scoring at or above the threshold. Jobs are
// processed one at a time. A failed match skips that job; a failed store
// write aborts the run.
func (s *Service) BulkAutoApply(ctx context.Context, req models.BulkAutoApplyRequest) (*models.BulkAutoApplyResult, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}

	threshold := s.defaultThreshold
	if req.MatchThreshold != nil {
		threshold = *req.MatchThreshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, utils.NewValidationError("matchThreshold must be between 0 and 100")
	}

	resume, err := s.loadResume(ctx, req.ResumeID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.store.ListJobDescriptionsByUser(ctx, req.UserID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	existing, err := s.store.ListApplicationsByUser(ctx, req.UserID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	applied := newAppliedIndex(existing)

	logger := s.logger.WithFields(map[string]interface{}{
		"user_id":   req.UserID,
		"resume_id": resume.ID,
	})
	logger.Info("Bulk auto-apply started", map[string]interface{}{
		"jobs":      len(jobs),
		"threshold": threshold,
	})
	start := time.Now()

	result := &models.BulkAutoApplyResult{
		Applications:   []models.BulkApplication{},
		SkippedDetails: []models.SkippedJob{},
	}
	skip := func(job models.JobDescription, code models.SkipCode, reason string) {
		j := job
		result.SkippedDetails = append(result.SkippedDetails, models.SkippedJob{
			JobDescription: &j,
			Code:           code,
			Reason:         reason,
		})
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, utils.NewUnexpectedError(err)
		}

		if applied.has(resume.ID, job.ID) {
			skip(job, models.SkipAlreadyApplied, reasonAlreadyApplied)
			continue
		}

		match, err := s.analyzer.AnalyzeJobMatch(ctx, resume.Content, job.Content, job.Title)
		if err != nil {
			logger.Warn("Job match failed during bulk run", map[string]interface{}{
				"job_description_id": job.ID,
				"error":              err.Error(),
			})
			skip(job, models.SkipProcessingError, reasonProcessingError)
			continue
		}

		s.recordHistory(ctx, resume.ID, models.AnalysisHistoryEntry{
			Kind:             history.KindJobMatch,
			JobDescriptionID: job.ID,
			Summary:          fmt.Sprintf("%d%% match for %s (bulk)", match.MatchPercentage, job.Title),
			Metadata:         map[string]interface{}{"matchPercentage": match.MatchPercentage},
		})

		if match.MatchPercentage < threshold {
			skip(job, models.SkipLowMatch, fmt.Sprintf("Low match score (%d%% < %d%%)", match.MatchPercentage, threshold))
			continue
		}

		app, err := s.createApplication(ctx, &models.Application{
			UserID:           req.UserID,
			ResumeID:         resume.ID,
			JobDescriptionID: job.ID,
			Status:           models.StatusApplied,
			MatchPercentage:  match.MatchPercentage,
			Notes:            fmt.Sprintf("Auto-applied via bulk process (%d%% match)", match.MatchPercentage),
		})
		if err != nil {
			return nil, err
		}
		applied.add(resume.ID, job.ID)
		result.Applications = append(result.Applications, models.BulkApplication{
			Application:     app,
			MatchPercentage: match.MatchPercentage,
		})
	}

	result.Applied = len(result.Applications)
	result.Skipped = len(result.SkippedDetails)
	result.Message = fmt.Sprintf("Bulk auto-apply completed: %d applications submitted", result.Applied)

	logger.Info("Bulk auto-apply completed", map[string]interface{}{
		"applied":  result.Applied,
		"skipped":  result.Skipped,
		"duration": utils.FormatDuration(time.Since(start)),
	})
	s.publish(ctx, events.BulkApplyCompleted, BulkCompleted{
		UserID:    req.UserID,
		ResumeID:  resume.ID,
		Threshold: threshold,
		Applied:   result.Applied,
		Skipped:   result.Skipped,
	})
	return result, nil
}
