package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

type GeminiClient struct {
	client *genai.Client
	model  string
	logger *utils.Logger
}

var _ Client = (*GeminiClient)(nil)

func NewGeminiClient(ctx context.Context, cfg Config, logger *utils.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, utils.NewAPIError("Gemini initialization failed: api key is empty", nil)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		return nil, utils.NewAPIError("Gemini initialization failed", err)
	}

	logger.Info("Gemini client initialized", "model", cfg.Model)

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string, image *models.DecodedImage) (string, error) {
	var parts []*genai.Part

	if image != nil && len(image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}
	if prompt != "" {
		parts = append(parts, genai.NewPartFromText(prompt))
	}
	if len(parts) == 0 {
		return "", ErrEmptyRequest
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: parts,
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		apiErr := providerError(ctx, "Gemini", err)
		g.logger.Error("Content generation failed", "error", apiErr, "model", g.model)
		return "", apiErr
	}

	text := geminiText(resp)
	if text == "" {
		reason := ""
		if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			reason = fmt.Sprintf(" (finish reason %s)", resp.Candidates[0].FinishReason)
		}
		return "", utils.NewModelError("empty response from Gemini model" + reason)
	}

	g.logger.Info("Successfully generated content from Gemini", "model", g.model, "text_length", len(text))
	return text, nil
}

func (g *GeminiClient) IsHealthy(ctx context.Context) bool {
	text, err := g.GenerateContent(ctx, healthPrompt, nil)
	if err != nil {
		g.logger.Error("Health check failed", "error", err)
		return false
	}
	return text != ""
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
