package llm

import (
	"context"
	"encoding/base64"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, OpenRouter, Ollama) selected by base URL.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *utils.Logger
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg Config, logger *utils.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, utils.NewAPIError("OpenAI initialization failed: api key is empty", nil)
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	logger.Info("OpenAI-compatible client initialized", "model", cfg.Model, "base_url", conf.BaseURL)

	return &OpenAIClient{
		client: openai.NewClientWithConfig(conf),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (o *OpenAIClient) GenerateContent(ctx context.Context, prompt string, image *models.DecodedImage) (string, error) {
	hasImage := image != nil && len(image.Data) > 0
	if prompt == "" && !hasImage {
		return "", ErrEmptyRequest
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if hasImage {
		if prompt != "" {
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			})
		}
		msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(image),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	} else {
		msg.Content = prompt
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		apiErr := providerError(ctx, "OpenAI", err)
		o.logger.Error("Content generation failed", "error", apiErr, "model", o.model)
		return "", apiErr
	}

	if len(resp.Choices) == 0 {
		return "", utils.NewModelError("no choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", utils.NewModelError("empty response from model")
	}

	o.logger.Info("Successfully generated content", "model", o.model, "text_length", len(text))
	return text, nil
}

func (o *OpenAIClient) IsHealthy(ctx context.Context) bool {
	text, err := o.GenerateContent(ctx, healthPrompt, nil)
	if err != nil {
		o.logger.Error("Health check failed", "error", err)
		return false
	}
	return text != ""
}

func dataURL(image *models.DecodedImage) string {
	mimeType := image.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
