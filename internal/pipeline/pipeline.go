package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/image-analyzer/internal/llm"
	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

const (
	MsgMissingImage  = "please upload an image first"
	MsgMissingPrompt = "please provide a prompt"
	MsgUnexpected    = "unexpected error, please try again"
)

type Validator interface {
	Validate(upload *models.UploadedImage) (*models.DecodedImage, error)
}

// Pipeline validates an upload and a prompt, invokes the model and classifies the outcome.
// It keeps no per-request state; every call produces exactly one result and is never retried.
type Pipeline struct {
	validator Validator
	client    llm.Client
	logger    *utils.Logger
}

func New(validator Validator, client llm.Client, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		validator: validator,
		client:    client,
		logger:    logger,
	}
}

func (p *Pipeline) Analyze(ctx context.Context, upload *models.UploadedImage, prompt string) models.AnalysisResult {
	if upload == nil {
		return models.Failure(utils.KindValidation, MsgMissingImage)
	}
	if strings.TrimSpace(prompt) == "" {
		return models.Failure(utils.KindValidation, MsgMissingPrompt)
	}

	image, err := p.validator.Validate(upload)
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) && appErr.Kind == utils.KindValidation {
			p.logger.Warn("Image validation failed", "filename", upload.Name, "size_bytes", upload.SizeBytes(), "error", appErr.Message)
			return models.Failure(utils.KindValidation, appErr.Message)
		}
		p.logger.Error("Unexpected validation error", "filename", upload.Name, "error", err)
		return models.Failure(utils.KindInternal, MsgUnexpected)
	}

	text, err := p.invoke(ctx, prompt, image)
	if err != nil {
		return p.classify(err)
	}

	return models.Success(text, image)
}

// invoke is the outermost boundary around the model client; a panic inside it
// becomes an ordinary error.
func (p *Pipeline) invoke(ctx context.Context, prompt string, image *models.DecodedImage) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model client panic: %v", r)
		}
	}()
	return p.client.GenerateContent(ctx, prompt, image)
}

func (p *Pipeline) classify(err error) models.AnalysisResult {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case utils.KindModel:
			p.logger.Warn("Model returned no usable content", "error", err)
			return models.Failure(utils.KindModel, "model error: "+appErr.Error())
		case utils.KindAPI:
			p.logger.Error("Model API call failed", "error", err)
			return models.Failure(utils.KindAPI, "api error: "+appErr.Error())
		}
	}

	p.logger.Error("Unexpected error during analysis", "error", err)
	return models.Failure(utils.KindInternal, MsgUnexpected)
}
