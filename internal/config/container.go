package config

import (
	"context"
	"fmt"

	"pdf-extract-api/internal/domain"
	"pdf-extract-api/internal/service"
	"pdf-extract-api/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config            *AppConfig
	Logger            domain.Logger
	Engine            domain.PDFEngine
	Cache             *service.PageGroupCache
	InferenceClient   domain.InferenceClient
	ExtractionService domain.ExtractionService

	vertexClient *service.VertexInferenceClient
}

// NewContainer creates a new dependency injection container. The context is
// used for the Vertex AI client handshake.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	if cfg.VertexProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required")
	}

	engine := service.NewPDFCPUEngine(appLogger)
	grouper := service.NewPageGrouper()
	cache := service.NewPageGroupCache(engine, grouper, cfg.GroupSize, cfg.CacheMaxDocuments, appLogger)

	vertexClient, err := service.NewVertexInferenceClient(ctx, cfg.VertexProjectID, cfg.VertexLocation, cfg.ModelName)
	if err != nil {
		return nil, fmt.Errorf("initialize inference client: %w", err)
	}

	extractionClient := service.NewExtractionClient(vertexClient, appLogger)
	transport := service.NewRetryingTransport(appLogger)
	orchestrator := service.NewOrchestrator(engine, cache, grouper, extractionClient, transport, cfg.Tuning(), appLogger)

	return &Container{
		Config:            cfg,
		Logger:            appLogger,
		Engine:            engine,
		Cache:             cache,
		InferenceClient:   vertexClient,
		ExtractionService: orchestrator,
		vertexClient:      vertexClient,
	}, nil
}

// Close releases the container's external connections.
func (c *Container) Close() error {
	if c.vertexClient != nil {
		return c.vertexClient.Close()
	}
	return nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetExtractionService returns the extraction service instance
func (c *Container) GetExtractionService() domain.ExtractionService {
	return c.ExtractionService
}
