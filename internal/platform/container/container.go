package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/doc-tutor/internal/core/ask"
	"github.com/jinford/doc-tutor/internal/core/document"
	"github.com/jinford/doc-tutor/internal/core/index"
	"github.com/jinford/doc-tutor/internal/core/ingestion"
	"github.com/jinford/doc-tutor/internal/core/study"
	"github.com/jinford/doc-tutor/internal/infra/openai"
	"github.com/jinford/doc-tutor/internal/infra/pdftext"
	"github.com/jinford/doc-tutor/pkg/config"
)

// ServiceContainer はアプリケーションの全サービスを組み立てて保持する
type ServiceContainer struct {
	cfg    *config.Config
	logger *slog.Logger

	store         *index.Store
	ingestService *ingestion.Service
	askService    *ask.Service
	studyService  *study.Service
}

// NewContainer は設定からサービス一式を構築する
func NewContainer(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*ServiceContainer, error) {
	// LLMクライアント（応答生成用）
	llmClient, err := openai.NewClient(
		cfg.OpenAI.APIKey,
		openai.WithModel(cfg.OpenAI.LLMModel),
		openai.WithTemperature(cfg.OpenAI.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	// Embedder（インデックス構築・検索用）
	embedder := openai.NewEmbedder(
		cfg.OpenAI.APIKey,
		openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
		openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
	)

	store := index.NewStore(embedder, index.WithStoreLogger(logger))

	chunker, err := document.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	ingestService := ingestion.NewService(
		pdftext.NewExtractor(),
		chunker,
		store,
		ingestion.WithMaxChunkTokens(cfg.Ingest.MaxChunkTokens),
		ingestion.WithLogger(logger),
	)

	askService := ask.NewService(
		store,
		llmClient,
		ask.WithTopK(cfg.Ask.TopK),
		ask.WithLogger(logger),
	)

	studyService := study.NewService(askService, study.WithLogger(logger))

	return &ServiceContainer{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		ingestService: ingestService,
		askService:    askService,
		studyService:  studyService,
	}, nil
}

// Config は設定を返す
func (c *ServiceContainer) Config() *config.Config { return c.cfg }

// Logger はロガーを返す
func (c *ServiceContainer) Logger() *slog.Logger { return c.logger }

// Store はインデックスストアを返す
func (c *ServiceContainer) Store() *index.Store { return c.store }

// IngestService は取り込みサービスを返す
func (c *ServiceContainer) IngestService() *ingestion.Service { return c.ingestService }

// AskService は質問応答サービスを返す
func (c *ServiceContainer) AskService() *ask.Service { return c.askService }

// StudyService は学習教材生成サービスを返す
func (c *ServiceContainer) StudyService() *study.Service { return c.studyService }

// Close はコンテナが保持するリソースをクリーンアップする
// 現状、外部接続はすべてHTTPクライアント経由のため解放対象はない
func (c *ServiceContainer) Close() {}
