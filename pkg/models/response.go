package models

import "time"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response. Message is the human readable part.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AutoApplyResponse is returned by POST /api/auto-apply
type AutoApplyResponse struct {
	Application *Application `json:"application"`
	Message     string       `json:"message"`
}

// SkipCode classifies why a job was skipped during bulk auto-apply
type SkipCode string

const (
	SkipAlreadyApplied  SkipCode = "already_applied"
	SkipLowMatch        SkipCode = "low_match_score"
	SkipProcessingError SkipCode = "processing_error"
)

// BulkApplication is one application created by a bulk run
type BulkApplication struct {
	Application     *Application `json:"application"`
	MatchPercentage int          `json:"matchPercentage"`
}

// SkippedJob records a job description the bulk run did not apply to
type SkippedJob struct {
	JobDescription *JobDescription `json:"jobDescription"`
	Code           SkipCode        `json:"code"`
	Reason         string          `json:"reason"`
}

// BulkAutoApplyResult summarises a bulk auto-apply run. Applied+Skipped equals the number of job descriptions processed.
type BulkAutoApplyResult struct {
	Applied        int               `json:"applied"`
	Skipped        int               `json:"skipped"`
	Applications   []BulkApplication `json:"applications"`
	SkippedDetails []SkippedJob      `json:"skippedDetails"`
	Message        string            `json:"message"`
}

// DashboardStats are the per-user headline counts
type DashboardStats struct {
	ActiveApplications int `json:"activeApplications"`
	Interviews         int `json:"interviews"`
	Offers             int `json:"offers"`
	AvgATSScore        int `json:"avgAtsScore"`
}

// AnalysisHistoryEntry is one recorded analysis against a resume
type AnalysisHistoryEntry struct {
	ID               string                 `json:"id"`
	Kind             string                 `json:"kind"`
	JobDescriptionID string                 `json:"jobDescriptionId,omitempty"`
	Summary          string                 `json:"summary"`
	Timestamp        time.Time              `json:"timestamp"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// AnalysisHistory is the recent analysis trail for a resume
type AnalysisHistory struct {
	ResumeID  string                 `json:"resumeId"`
	Entries   []AnalysisHistoryEntry `json:"entries"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}
