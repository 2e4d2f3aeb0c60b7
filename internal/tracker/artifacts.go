package tracker

import (
	"context"
	"fmt"
	"strings"

	"applytrack/internal/events"
	"applytrack/internal/history"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

// GenerateCoverLetter writes a letter for the job and stores it together with
// a new draft application. Each call creates a new draft.
func (s *Service) GenerateCoverLetter(ctx context.Context, req models.ArtifactRequest) (*models.CoverLetter, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}
	resume, err := s.loadResume(ctx, req.ResumeID)
	if err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, req.JobDescriptionID)
	if err != nil {
		return nil, err
	}

	content, err := s.analyzer.GenerateCoverLetter(ctx, resume.Content, job.Content, job.Title, job.Company)
	if err != nil {
		return nil, analysisError(err)
	}

	app, letter, err := s.store.CreateDraftWithCoverLetter(ctx,
		&models.Application{
			UserID:           req.UserID,
			ResumeID:         resume.ID,
			JobDescriptionID: job.ID,
			Status:           models.StatusDraft,
		},
		&models.CoverLetter{
			UserID:  req.UserID,
			Content: content,
		},
	)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}

	s.publish(ctx, events.ApplicationCreated, app)
	s.recordHistory(ctx, resume.ID, models.AnalysisHistoryEntry{
		Kind:             history.KindCoverLetter,
		JobDescriptionID: job.ID,
		Summary:          fmt.Sprintf("Cover letter for %s at %s", job.Title, job.Company),
		Metadata: map[string]interface{}{
			"applicationId": app.ID,
			"coverLetterId": letter.ID,
		},
	})
	return letter, nil
}

func (s *Service) ListCoverLetters(ctx context.Context, userID string) ([]models.CoverLetter, error) {
	letters, err := s.store.ListCoverLettersByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return letters, nil
}

// CoverLetterForApplication returns the letter generated with a draft application
func (s *Service) CoverLetterForApplication(ctx context.Context, applicationID string) (*models.CoverLetter, error) {
	letter, err := s.store.GetCoverLetterByApplication(ctx, applicationID)
	if err != nil {
		return nil, storeError("Cover letter", err)
	}
	return letter, nil
}

// GenerateInterviewQuestions stores a fresh question set for the job
func (s *Service) GenerateInterviewQuestions(ctx context.Context, req models.InterviewQuestionsRequest) (*models.InterviewQuestionSet, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, req.JobDescriptionID)
	if err != nil {
		return nil, err
	}

	questions, err := s.analyzer.GenerateInterviewQuestions(ctx, job.Content, job.Title)
	if err != nil {
		return nil, analysisError(err)
	}

	set, err := s.store.CreateInterviewQuestions(ctx, &models.InterviewQuestionSet{
		UserID:              req.UserID,
		JobDescriptionID:    job.ID,
		Questions:           utils.CloneStrings(questions.General),
		TechnicalQuestions:  utils.CloneStrings(questions.Technical),
		BehavioralQuestions: utils.CloneStrings(questions.Behavioral),
	})
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return set, nil
}

// LatestInterviewQuestions returns the newest set generated for a job
func (s *Service) LatestInterviewQuestions(ctx context.Context, jobID string) (*models.InterviewQuestionSet, error) {
	set, err := s.store.GetInterviewQuestionsByJob(ctx, jobID)
	if err != nil {
		return nil, storeError("Interview questions", err)
	}
	return set, nil
}

// AnalyzeSkillGap stores what the resume lacks for the job
func (s *Service) AnalyzeSkillGap(ctx context.Context, req models.ArtifactRequest) (*models.SkillGap, error) {
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}
	resume, err := s.loadResume(ctx, req.ResumeID)
	if err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, req.JobDescriptionID)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.AnalyzeSkillGap(ctx, resume.Content, job.Content)
	if err != nil {
		return nil, analysisError(err)
	}

	gap, err := s.store.CreateSkillGap(ctx, &models.SkillGap{
		UserID:          req.UserID,
		MissingSkills:   utils.CloneStrings(result.MissingSkills),
		Priority:        models.SkillPriority(strings.ToLower(string(result.Priority))),
		Recommendations: result.Recommendations,
	})
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}

	s.recordHistory(ctx, resume.ID, models.AnalysisHistoryEntry{
		Kind:             history.KindSkillGap,
		JobDescriptionID: job.ID,
		Summary:          fmt.Sprintf("%d missing skills, %s priority", len(gap.MissingSkills), gap.Priority),
		Metadata:         map[string]interface{}{"skillGapId": gap.ID},
	})
	return gap, nil
}

func (s *Service) ListSkillGaps(ctx context.Context, userID string) ([]models.SkillGap, error) {
	gaps, err := s.store.ListSkillGapsByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUnexpectedError(err)
	}
	return gaps, nil
}
