package models

import "time"

// CreateUserRequest registers a new user
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// CreateJobDescriptionRequest is the payload for POST /api/job-descriptions
type CreateJobDescriptionRequest struct {
	UserID          string   `json:"userId" validate:"required"`
	Title           string   `json:"title" validate:"required,max=300"`
	Company         string   `json:"company" validate:"required,max=300"`
	Content         string   `json:"content" validate:"required"`
	RequiredSkills  []string `json:"requiredSkills"`
	ExperienceLevel string   `json:"experienceLevel"`
	Location        string   `json:"location"`
	Salary          string   `json:"salary"`
}

// JobMatchRequest asks for a resume / job description comparison
type JobMatchRequest struct {
	ResumeID         string `json:"resumeId" validate:"required"`
	JobDescriptionID string `json:"jobDescriptionId" validate:"required"`
}

// CreateApplicationRequest is the payload for POST /api/applications
type CreateApplicationRequest struct {
	UserID           string            `json:"userId" validate:"required"`
	ResumeID         string            `json:"resumeId" validate:"required"`
	JobDescriptionID string            `json:"jobDescriptionId" validate:"required"`
	Status           ApplicationStatus `json:"status" validate:"omitempty,entry_status"`
	MatchPercentage  *int              `json:"matchPercentage" validate:"omitempty,min=0,max=100"`
	InterviewDate    *time.Time        `json:"interviewDate"`
	Notes            string            `json:"notes"`
}

// UpdateApplicationStatusRequest is the payload for PATCH /api/applications/:id/status
type UpdateApplicationStatusRequest struct {
	Status        ApplicationStatus `json:"status" validate:"required,app_status"`
	InterviewDate *time.Time        `json:"interviewDate"`
	Notes         *string           `json:"notes"`
}

// ArtifactRequest covers the cover letter and skill gap generation payloads
type ArtifactRequest struct {
	UserID           string `json:"userId" validate:"required"`
	ResumeID         string `json:"resumeId" validate:"required"`
	JobDescriptionID string `json:"jobDescriptionId" validate:"required"`
}

// InterviewQuestionsRequest is the payload for POST /api/interview-questions/generate
type InterviewQuestionsRequest struct {
	UserID           string `json:"userId" validate:"required"`
	JobDescriptionID string `json:"jobDescriptionId" validate:"required"`
}

// AutoApplyRequest is the payload for POST /api/auto-apply
type AutoApplyRequest struct {
	UserID           string `json:"userId" validate:"required"`
	ResumeID         string `json:"resumeId" validate:"required"`
	JobDescriptionID string `json:"jobDescriptionId" validate:"required"`
}

// BulkAutoApplyRequest is the payload for POST /api/bulk-auto-apply.
// A nil MatchThreshold selects the configured default.
type BulkAutoApplyRequest struct {
	UserID         string `json:"userId" validate:"required"`
	ResumeID       string `json:"resumeId" validate:"required"`
	MatchThreshold *int   `json:"matchThreshold" validate:"omitempty,min=0,max=100"`
}
