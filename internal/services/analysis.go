package services

import (
	"context"
	"time"

	"github.com/BerylCAtieno/image-analyzer/internal/llm"
	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/pipeline"
	"github.com/BerylCAtieno/image-analyzer/internal/prompts"
	"github.com/BerylCAtieno/image-analyzer/internal/repository"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
	"github.com/BerylCAtieno/image-analyzer/internal/validator"
)

type AnalysisService interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) models.AnalysisResult
	Prompts() *prompts.Catalog
	Policy() models.ValidationPolicy
	ModelHealthy(ctx context.Context) bool
	Stats(ctx context.Context) ([]models.OutcomeCount, error)
}

type analysisService struct {
	pipeline  *pipeline.Pipeline
	validator *validator.ImageValidator
	client    llm.Client
	catalog   *prompts.Catalog
	repo      repository.Repository
	logger    *utils.Logger
}

// NewService wires the pipeline. repo may be nil, in which case no events are recorded.
func NewService(client llm.Client, v *validator.ImageValidator, catalog *prompts.Catalog, repo repository.Repository, logger *utils.Logger) AnalysisService {
	return &analysisService{
		pipeline:  pipeline.New(v, client, logger),
		validator: v,
		client:    client,
		catalog:   catalog,
		repo:      repo,
		logger:    logger,
	}
}

func (s *analysisService) Analyze(ctx context.Context, req *models.AnalysisRequest) models.AnalysisResult {
	start := time.Now()
	prompt := s.catalog.Resolve(req.PromptKey, req.PromptText)

	result := s.pipeline.Analyze(ctx, req.Image, prompt)

	elapsed := time.Since(start)
	s.logger.Info("Analysis finished",
		"prompt_key", req.PromptKey,
		"outcome", result.OutcomeKind(),
		"duration", elapsed)

	s.record(ctx, req, result, elapsed)
	return result
}

func (s *analysisService) record(ctx context.Context, req *models.AnalysisRequest, result models.AnalysisResult, elapsed time.Duration) {
	if s.repo == nil {
		return
	}

	event := &models.AnalysisEvent{
		ID:         utils.GenerateID(),
		PromptKey:  req.PromptKey,
		Outcome:    result.OutcomeKind(),
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if event.PromptKey == "" {
		event.PromptKey = prompts.KeyCustom
	}
	if req.Image != nil {
		event.Extension = validator.Extension(req.Image.Name)
		event.SizeBytes = req.Image.SizeBytes()
	}

	// The event log is best effort; the user still gets the result.
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record analysis event", "error", err, "id", event.ID)
	}
}

func (s *analysisService) Prompts() *prompts.Catalog {
	return s.catalog
}

func (s *analysisService) Policy() models.ValidationPolicy {
	return s.validator.Policy()
}

func (s *analysisService) ModelHealthy(ctx context.Context) bool {
	return s.client.IsHealthy(ctx)
}

func (s *analysisService) Stats(ctx context.Context) ([]models.OutcomeCount, error) {
	if s.repo == nil {
		return []models.OutcomeCount{}, nil
	}

	counts, err := s.repo.CountByOutcome(ctx)
	if err != nil {
		s.logger.Error("Failed to read analysis stats", "error", err)
		return nil, utils.NewInternalError("Failed to read analysis stats")
	}
	return counts, nil
}
