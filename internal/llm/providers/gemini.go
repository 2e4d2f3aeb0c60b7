package providers

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"applytrack/internal/config"
	"applytrack/internal/logging"
)

const defaultGeminiModel = "gemini-2.5-pro"

// GeminiProvider implements the LLM provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
	config *config.Config
	model  string
	logger logging.Logger
}

// NewGeminiProvider creates a Gemini client bound to the configured API key
func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := defaultGeminiModel
	if cfg.LLM.Model != "" {
		model = cfg.LLM.Model
	}

	return &GeminiProvider{
		client: client,
		config: cfg,
		model:  model,
		logger: logging.GetGlobalLogger().WithField("provider", "gemini"),
	}, nil
}

// Generate asks Gemini for a reply to the prompt under the system instruction
func (gp *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](gp.config.LLM.Temperature),
		MaxOutputTokens: int32(gp.config.LLM.MaxTokens),
	}
	if req.JSON {
		genConfig.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := gp.client.Models.GenerateContent(ctx, gp.model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in Gemini response")
	}

	gp.logger.Debug("Gemini response received", map[string]interface{}{
		"model":           gp.model,
		"processing_time": time.Since(startTime).String(),
	})

	return text, nil
}

// IsHealthy checks that a key is configured and the model is reachable
func (gp *GeminiProvider) IsHealthy(ctx context.Context) error {
	if gp.config.LLM.APIKey == "" {
		return fmt.Errorf("Gemini API key not configured - set LLM_API_KEY environment variable")
	}

	if _, err := gp.client.Models.Get(ctx, gp.model, nil); err != nil {
		return fmt.Errorf("Gemini API health check failed: %w", err)
	}
	return nil
}

// GetProviderName returns the name of the LLM provider
func (gp *GeminiProvider) GetProviderName() string {
	return "gemini"
}
