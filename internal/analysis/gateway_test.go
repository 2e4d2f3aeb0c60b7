package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/llm"
	"applytrack/pkg/models"
)

type fakeGenerator struct {
	reply string
	err   error
	last  llm.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	f.last = req
	return f.reply, f.err
}

func TestAnalyzeResumeDecodesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + `{
		"skills": ["Python", "SQL"],
		"experience": "5 years",
		"education": "BSc",
		"atsScore": 81.6,
		"strengths": ["backend"],
		"weaknesses": [],
		"suggestions": "add metrics"
	}` + "\n```"}
	g := NewGateway(gen)

	res, err := g.AnalyzeResume(context.Background(), "Senior engineer with 5 years Python")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, res.Skills)
	assert.Equal(t, 82, res.ATSScore)
	assert.Empty(t, res.Weaknesses)
	assert.True(t, gen.last.JSON)
	assert.Contains(t, gen.last.Prompt, "Senior engineer")
	assert.Contains(t, gen.last.System, "ATS")
}

func TestAnalyzeJobMatchPromptCarriesTitle(t *testing.T) {
	gen := &fakeGenerator{reply: `{"matchPercentage": 90, "skillsMatch": "9/10", "experienceMatch": "4/5", "educationMatch": true, "missingSkills": ["Kafka"]}`}
	g := NewGateway(gen)

	match, err := g.AnalyzeJobMatch(context.Background(), "resume", "job text", "Staff Engineer")
	require.NoError(t, err)
	assert.Equal(t, 90, match.MatchPercentage)
	assert.Equal(t, "9/10", match.SkillsMatch)
	assert.True(t, match.EducationMatch)
	assert.Contains(t, gen.last.Prompt, "Job Title: Staff Engineer")
}

func TestSchemaViolationsAreUnavailable(t *testing.T) {
	cases := map[string]string{
		"empty":            "   ",
		"malformed":        `{"matchPercentage": `,
		"out of range":     `{"matchPercentage": 140, "skillsMatch": "1/2", "experienceMatch": "1/2", "educationMatch": false, "missingSkills": []}`,
		"negative":         `{"matchPercentage": -1, "skillsMatch": "1/2", "experienceMatch": "1/2", "educationMatch": false, "missingSkills": []}`,
		"missing field":    `{"matchPercentage": 50, "skillsMatch": "1/2", "experienceMatch": "1/2", "educationMatch": false}`,
		"bad ratio":        `{"matchPercentage": 50, "skillsMatch": "most", "experienceMatch": "1/2", "educationMatch": false, "missingSkills": []}`,
		"wrong type":       `{"matchPercentage": "high", "skillsMatch": "1/2", "experienceMatch": "1/2", "educationMatch": false, "missingSkills": []}`,
		"array not object": `[1, 2, 3]`,
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGateway(&fakeGenerator{reply: reply})
			_, err := g.AnalyzeJobMatch(context.Background(), "r", "j", "t")
			assert.ErrorIs(t, err, ErrAnalysisUnavailable)
		})
	}
}

func TestProviderFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	g := NewGateway(&fakeGenerator{err: cause})

	_, err := g.AnalyzeSkillGap(context.Background(), "r", "j")
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAnalyzeSkillGapNormalizesPriority(t *testing.T) {
	g := NewGateway(&fakeGenerator{reply: `{"missingSkills": ["Rust"], "priority": " High ", "recommendations": "take a course"}`})

	gap, err := g.AnalyzeSkillGap(context.Background(), "r", "j")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, gap.Priority)

	g = NewGateway(&fakeGenerator{reply: `{"missingSkills": [], "priority": "urgent", "recommendations": ""}`})
	_, err = g.AnalyzeSkillGap(context.Background(), "r", "j")
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
}

func TestGenerateInterviewQuestions(t *testing.T) {
	g := NewGateway(&fakeGenerator{reply: `{"general": ["Why us?"], "technical": ["Explain goroutines"], "behavioral": ["Tell me about a conflict"]}`})

	q, err := g.GenerateInterviewQuestions(context.Background(), "job", "Go Developer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Why us?"}, q.General)
	assert.Equal(t, []string{"Explain goroutines"}, q.Technical)
	assert.Equal(t, []string{"Tell me about a conflict"}, q.Behavioral)
}

func TestGenerateCoverLetterIsPlainText(t *testing.T) {
	gen := &fakeGenerator{reply: "\nDear Hiring Manager,\n\nI am excited...\n"}
	g := NewGateway(gen)

	letter, err := g.GenerateCoverLetter(context.Background(), "resume", "job", "Engineer", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,\n\nI am excited...", letter)
	assert.False(t, gen.last.JSON)
	assert.Contains(t, gen.last.Prompt, "Company: Acme")

	_, err = NewGateway(&fakeGenerator{reply: " "}).GenerateCoverLetter(context.Background(), "r", "j", "t", "c")
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1}  `))
}
