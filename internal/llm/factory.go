package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the client for cfg.Provider. Call it once at startup.
func New(ctx context.Context, cfg Config, logger *utils.Logger) (Client, error) {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg, logger)
	case "openai":
		return NewOpenAIClient(cfg, logger)
	default:
		return nil, utils.NewAPIError(fmt.Sprintf("unknown LLM provider: %s", cfg.Provider), nil)
	}
}
