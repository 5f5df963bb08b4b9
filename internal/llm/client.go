package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

// Client hides a hosted multimodal model behind two operations.
// Implementations are constructed once per process and are safe for concurrent use.
type Client interface {
	// GenerateContent sends the prompt and the image together in one request.
	// Either may be omitted, but not both. It returns a model error when the provider
	// answers with no usable text and an API error when the call itself fails.
	GenerateContent(ctx context.Context, prompt string, image *models.DecodedImage) (string, error)

	// IsHealthy issues a minimal generation and reports whether text came back.
	// Diagnostics only.
	IsHealthy(ctx context.Context) bool
}

var ErrEmptyRequest = errors.New("llm: prompt and image are both empty")

const healthPrompt = "Hello"

var keyRedactor = regexp.MustCompile(`(key=)[^&"\s]+`)

// providerError wraps a failed provider call as an API error. The cause is kept
// for errors.Is unless its text carries the API key, in which case only the
// redacted text and the context error survive.
func providerError(ctx context.Context, provider string, err error) *utils.AppError {
	raw := err.Error()
	safe := keyRedactor.ReplaceAllString(raw, "$1[REDACTED]")
	if safe != raw {
		return utils.NewAPIError(safe, ctx.Err())
	}

	cause := err
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		cause = fmt.Errorf("%w: %v", ctxErr, err)
	}
	return utils.NewAPIError(provider+" request failed", cause)
}
