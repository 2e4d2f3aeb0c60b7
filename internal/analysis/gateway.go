// Package analysis turns free-form resume and job text into structured
// assessments by prompting an LLM and validating what comes back.
//
// Every reply is checked against a JSON schema before it is decoded. Any
// failure along the way (transport, empty reply, malformed JSON, schema
// mismatch) surfaces as ErrAnalysisUnavailable wrapping the cause.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"applytrack/internal/llm"
	"applytrack/internal/llm/processors"
	"applytrack/internal/logging"
	"applytrack/pkg/models"
)

// ErrAnalysisUnavailable marks every failed analysis call
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// maxInputTokens bounds each document placed in a prompt
const maxInputTokens = 30000

// Generator is the LLM call the gateway depends on; *llm.Manager satisfies it
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
}

// Gateway runs the five analysis operations
type Gateway struct {
	gen     Generator
	cleaner *processors.HTMLCleaner
	logger  logging.Logger
}

// NewGateway creates a gateway over gen
func NewGateway(gen Generator) *Gateway {
	return &Gateway{
		gen:     gen,
		cleaner: processors.NewHTMLCleaner(),
		logger:  logging.GetGlobalLogger().WithField("component", "analysis"),
	}
}

func unavailable(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrAnalysisUnavailable, op, cause)
}

func (g *Gateway) input(text string) string {
	return g.cleaner.Truncate(text, maxInputTokens)
}

// generateJSON calls the model and validates the reply against schema,
// decoding it into out. roundKeys names numeric fields rounded after validation.
func (g *Gateway) generateJSON(ctx context.Context, op, system, prompt string, schema map[string]interface{}, out interface{}, roundKeys ...string) error {
	raw, err := g.gen.Generate(ctx, llm.GenerateRequest{System: system, Prompt: prompt, JSON: true})
	if err != nil {
		return unavailable(op, err)
	}

	if err := decodeValidated(raw, schema, out, roundKeys...); err != nil {
		g.logger.Warn("Rejected LLM response", map[string]interface{}{
			"operation":       op,
			"error":           err.Error(),
			"response_length": len(raw),
		})
		return unavailable(op, err)
	}
	return nil
}

// stripFences removes a surrounding markdown code block, with or without a language tag
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(text[:nl]); !strings.ContainsAny(tag, "{[") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func decodeValidated(raw string, schema map[string]interface{}, out interface{}, roundKeys ...string) error {
	text := stripFences(raw)
	if text == "" {
		return errors.New("empty response from model")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}

	if obj, ok := doc.(map[string]interface{}); ok {
		if p, ok := obj["priority"].(string); ok {
			obj["priority"] = strings.ToLower(strings.TrimSpace(p))
		}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	obj := doc.(map[string]interface{})
	for _, key := range roundKeys {
		if v, ok := obj[key].(float64); ok {
			obj[key] = math.Round(v)
		}
	}

	normalized, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, out)
}

// AnalyzeResume extracts skills, history and an ATS score from resume text
func (g *Gateway) AnalyzeResume(ctx context.Context, resumeText string) (*models.ResumeAnalysis, error) {
	var out models.ResumeAnalysis
	if err := g.generateJSON(ctx, "analyze resume", resumeSystemPrompt, g.input(resumeText), resumeSchema, &out, "atsScore"); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeJobMatch scores how well a resume fits a job description
func (g *Gateway) AnalyzeJobMatch(ctx context.Context, resumeText, jobText, jobTitle string) (*models.JobMatchAnalysis, error) {
	var out models.JobMatchAnalysis
	prompt := jobMatchPrompt(g.input(resumeText), g.input(jobText), jobTitle)
	if err := g.generateJSON(ctx, "analyze job match", jobMatchSystemPrompt, prompt, jobMatchSchema, &out, "matchPercentage"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateCoverLetter writes a plain-text cover letter
func (g *Gateway) GenerateCoverLetter(ctx context.Context, resumeText, jobText, jobTitle, company string) (string, error) {
	prompt := coverLetterPrompt(g.input(resumeText), g.input(jobText), jobTitle, company)

	raw, err := g.gen.Generate(ctx, llm.GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", unavailable("generate cover letter", err)
	}

	letter := stripFences(raw)
	if letter == "" {
		return "", unavailable("generate cover letter", errors.New("empty response from model"))
	}
	return letter, nil
}

// GenerateInterviewQuestions produces general, technical and behavioral questions for a job
func (g *Gateway) GenerateInterviewQuestions(ctx context.Context, jobText, jobTitle string) (*models.InterviewQuestions, error) {
	var out models.InterviewQuestions
	if err := g.generateJSON(ctx, "generate interview questions", interviewSystemPrompt, interviewPrompt(g.input(jobText), jobTitle), interviewSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeSkillGap lists the skills a resume lacks for a job and how urgent they are
func (g *Gateway) AnalyzeSkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapAnalysis, error) {
	var out models.SkillGapAnalysis
	if err := g.generateJSON(ctx, "analyze skill gap", skillGapSystemPrompt, skillGapPrompt(g.input(resumeText), g.input(jobText)), skillGapSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
