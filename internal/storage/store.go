// Package storage is the persistence gateway for users, resumes, job
// descriptions, applications and generated artifacts. Records are never
// deleted; every write is visible to the next read.
package storage

import (
	"context"
	"errors"
	"fmt"

	"applytrack/internal/config"
	"applytrack/pkg/models"
)

// ErrNotFound is returned by every Get/Update when the id is unknown
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a unique constraint (the username) is violated
var ErrConflict = errors.New("record already exists")

// Store is implemented by the in-memory and PostgreSQL backends.
// Create methods assign the id and timestamp and return the stored copy.
// List methods return newest first.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateResume(ctx context.Context, resume *models.Resume) (*models.Resume, error)
	GetResume(ctx context.Context, id string) (*models.Resume, error)
	ListResumesByUser(ctx context.Context, userID string) ([]models.Resume, error)
	UpdateResume(ctx context.Context, id string, update models.ResumeUpdate) (*models.Resume, error)

	CreateJobDescription(ctx context.Context, job *models.JobDescription) (*models.JobDescription, error)
	GetJobDescription(ctx context.Context, id string) (*models.JobDescription, error)
	ListJobDescriptionsByUser(ctx context.Context, userID string) ([]models.JobDescription, error)

	CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	ListApplicationsByUser(ctx context.Context, userID string) ([]models.Application, error)
	UpdateApplication(ctx context.Context, id string, update models.ApplicationUpdate) (*models.Application, error)

	ListCoverLettersByUser(ctx context.Context, userID string) ([]models.CoverLetter, error)
	GetCoverLetterByApplication(ctx context.Context, applicationID string) (*models.CoverLetter, error)

	// CreateDraftWithCoverLetter stores a draft application and its cover letter
	// as one unit: either both become visible or neither does. The letter's
	// ApplicationID is set to the new application's id.
	CreateDraftWithCoverLetter(ctx context.Context, app *models.Application, letter *models.CoverLetter) (*models.Application, *models.CoverLetter, error)

	CreateInterviewQuestions(ctx context.Context, set *models.InterviewQuestionSet) (*models.InterviewQuestionSet, error)
	GetInterviewQuestionsByJob(ctx context.Context, jobDescriptionID string) (*models.InterviewQuestionSet, error)

	CreateSkillGap(ctx context.Context, gap *models.SkillGap) (*models.SkillGap, error)
	ListSkillGapsByUser(ctx context.Context, userID string) ([]models.SkillGap, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by database.driver
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Database.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		return NewPostgresStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}
