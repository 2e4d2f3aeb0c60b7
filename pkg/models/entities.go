package models

import "time"

// ApplicationStatus is the pipeline stage of an application
type ApplicationStatus string

const (
	StatusDraft     ApplicationStatus = "draft"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

// AllStatuses lists every known application status in pipeline order
var AllStatuses = []ApplicationStatus{StatusDraft, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// IsValid reports whether s is a known status
func (s ApplicationStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsActive reports whether the application is still in flight
func (s ApplicationStatus) IsActive() bool {
	return s == StatusApplied || s == StatusInterview
}

// User owns every other record. The credential hash never leaves the server.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Credential string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Resume is an uploaded resume together with its analysis
type Resume struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Filename    string    `json:"filename"`
	Content     string    `json:"content"`
	Skills      []string  `json:"skills"`
	Experience  string    `json:"experience"`
	Education   string    `json:"education"`
	ATSScore    int       `json:"atsScore"`
	Strengths   []string  `json:"strengths"`
	Weaknesses  []string  `json:"weaknesses"`
	Suggestions string    `json:"suggestions"`
	FileURL     string    `json:"fileUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ResumeUpdate carries the fields of a partial resume update; nil fields are left untouched
type ResumeUpdate struct {
	Filename    *string   `json:"filename,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Skills      *[]string `json:"skills,omitempty"`
	Experience  *string   `json:"experience,omitempty"`
	Education   *string   `json:"education,omitempty"`
	ATSScore    *int      `json:"atsScore,omitempty" validate:"omitempty,min=0,max=100"`
	Strengths   *[]string `json:"strengths,omitempty"`
	Weaknesses  *[]string `json:"weaknesses,omitempty"`
	Suggestions *string   `json:"suggestions,omitempty"`
	FileURL     *string   `json:"fileUrl,omitempty"`
}

// Apply merges the non-nil fields of u into r
func (u ResumeUpdate) Apply(r *Resume) {
	if u.Filename != nil {
		r.Filename = *u.Filename
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.Skills != nil {
		r.Skills = append([]string(nil), (*u.Skills)...)
	}
	if u.Experience != nil {
		r.Experience = *u.Experience
	}
	if u.Education != nil {
		r.Education = *u.Education
	}
	if u.ATSScore != nil {
		r.ATSScore = *u.ATSScore
	}
	if u.Strengths != nil {
		r.Strengths = append([]string(nil), (*u.Strengths)...)
	}
	if u.Weaknesses != nil {
		r.Weaknesses = append([]string(nil), (*u.Weaknesses)...)
	}
	if u.Suggestions != nil {
		r.Suggestions = *u.Suggestions
	}
	if u.FileURL != nil {
		r.FileURL = *u.FileURL
	}
}

// JobDescription is a job posting entered by the user
type JobDescription struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Content         string    `json:"content"`
	RequiredSkills  []string  `json:"requiredSkills"`
	ExperienceLevel string    `json:"experienceLevel"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Application links a resume to a job description and tracks its status
type Application struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	ResumeID         string            `json:"resumeId"`
	JobDescriptionID string            `json:"jobDescriptionId"`
	Status           ApplicationStatus `json:"status"`
	MatchPercentage  int               `json:"matchPercentage"`
	AppliedAt        time.Time         `json:"appliedAt"`
	InterviewDate    *time.Time        `json:"interviewDate,omitempty"`
	Notes            string            `json:"notes"`
}

// ApplicationUpdate carries the fields of a partial application update
type ApplicationUpdate struct {
	Status          *ApplicationStatus `json:"status,omitempty"`
	MatchPercentage *int               `json:"matchPercentage,omitempty"`
	InterviewDate   *time.Time         `json:"interviewDate,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}

// Apply merges the non-nil fields of u into a. AppliedAt is never touched.
func (u ApplicationUpdate) Apply(a *Application) {
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.MatchPercentage != nil {
		a.MatchPercentage = *u.MatchPercentage
	}
	if u.InterviewDate != nil {
		t := *u.InterviewDate
		a.InterviewDate = &t
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
}

// CoverLetter is one generated letter for an application
type CoverLetter struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ApplicationID string    `json:"applicationId"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InterviewQuestionSet is one generated batch of interview questions for a job
type InterviewQuestionSet struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	JobDescriptionID    string    `json:"jobDescriptionId"`
	Questions           []string  `json:"questions"`
	TechnicalQuestions  []string  `json:"technicalQuestions"`
	BehavioralQuestions []string  `json:"behavioralQuestions"`
	CreatedAt           time.Time `json:"createdAt"`
}

// SkillPriority ranks how urgently missing skills should be acquired
type SkillPriority string

const (
	PriorityHigh   SkillPriority = "high"
	PriorityMedium SkillPriority = "medium"
	PriorityLow    SkillPriority = "low"
)

// SkillGap is one stored skill gap analysis
type SkillGap struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	MissingSkills   []string      `json:"missingSkills"`
	Priority        SkillPriority `json:"priority"`
	Recommendations string        `json:"recommendations"`
	CreatedAt       time.Time     `json:"createdAt"`
}
