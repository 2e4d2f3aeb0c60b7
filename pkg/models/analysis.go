package models

// ResumeAnalysis is the structured result of analyzing a resume
type ResumeAnalysis struct {
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience"`
	Education   string   `json:"education"`
	ATSScore    int      `json:"atsScore"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions string   `json:"suggestions"`
}

// JobMatchAnalysis is the comparison of one resume against one job description
type JobMatchAnalysis struct {
	MatchPercentage  int      `json:"matchPercentage"`
	SkillsMatch      string   `json:"skillsMatch"`
	ExperienceMatch  string   `json:"experienceMatch"`
	EducationMatch   bool     `json:"educationMatch"`
	MissingSkills    []string `json:"missingSkills"`
	JobDescriptionID string   `json:"jobDescriptionId,omitempty"`
}

// InterviewQuestions groups generated questions by category
type InterviewQuestions struct {
	General    []string `json:"general"`
	Technical  []string `json:"technical"`
	Behavioral []string `json:"behavioral"`
}

// SkillGapAnalysis is the result of comparing a resume's skills with a job's requirements
type SkillGapAnalysis struct {
	MissingSkills   []string      `json:"missingSkills"`
	Priority        SkillPriority `json:"priority"`
	Recommendations string        `json:"recommendations"`
}
