package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/doc-tutor/internal/core/document"
	"github.com/jinford/doc-tutor/internal/core/index"
)

// ErrChunkTokenLimit はチャンクがEmbedding入力トークン上限を超過した場合のエラー
var ErrChunkTokenLimit = errors.New("chunk exceeds embedding input token limit")

// DefaultMaxChunkTokens はEmbeddingモデルの1入力あたりトークン上限のデフォルト値
// （OpenAIのtext-embedding-3系は8192トークンまで）
const DefaultMaxChunkTokens = 8192

// TextExtractor はバイナリからプレーンテキストを抽出するインターフェース
type TextExtractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// IndexBuilder はチャンク集合からインデックスを構築するインターフェース
type IndexBuilder interface {
	Build(ctx context.Context, doc document.Document, chunks []document.Chunk) (*index.Snapshot, error)
}

// Result は取り込み処理の結果を表す
type Result struct {
	Document    document.Document
	Snapshot    *index.Snapshot
	ChunkCount  int
	TotalTokens int
	Duration    time.Duration
}

// Service はPDF取り込みのユースケースを提供する
//
// パイプライン: テキスト抽出 → 正規化 → チャンク化 → Embedding → インデックス差し替え
// いずれかの段階で失敗した場合、既存のインデックスは一切変更されない
type Service struct {
	extractor      TextExtractor
	chunker        *document.Chunker
	builder        IndexBuilder
	maxChunkTokens int
	logger         *slog.Logger
}

type serviceOptions struct {
	maxChunkTokens int
	logger         *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithMaxChunkTokens はEmbedding入力トークン上限を上書きする
func WithMaxChunkTokens(maxTokens int) ServiceOption {
	return func(o *serviceOptions) {
		o.maxChunkTokens = maxTokens
	}
}

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService は新しいServiceを作成する
func NewService(extractor TextExtractor, chunker *document.Chunker, builder IndexBuilder, opts ...ServiceOption) *Service {
	options := serviceOptions{
		maxChunkTokens: DefaultMaxChunkTokens,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxChunkTokens <= 0 {
		options.maxChunkTokens = DefaultMaxChunkTokens
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		extractor:      extractor,
		chunker:        chunker,
		builder:        builder,
		maxChunkTokens: options.maxChunkTokens,
		logger:         options.logger,
	}
}

// IngestPDF はPDFを取り込み、現在のドキュメントとインデックスを差し替える
func (s *Service) IngestPDF(ctx context.Context, r io.ReaderAt, size int64, filename string) (*Result, error) {
	startTime := time.Now()

	s.logger.Info("ドキュメント取り込みを開始",
		"filename", filename,
		"size", size,
	)

	// 1. PDFからテキストを抽出
	rawText, err := s.extractor.Extract(ctx, r, size)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}

	// 2. テキストを正規化（空ドキュメントはここで弾かれる）
	normalized, err := document.Normalize(rawText)
	if err != nil {
		return nil, err
	}

	doc := document.Document{
		ID:         uuid.New(),
		Filename:   filename,
		Size:       size,
		RawText:    rawText,
		Text:       normalized,
		UploadedAt: time.Now(),
	}

	// 3. チャンク化とEmbedding入力トークン上限のチェック
	// 上限超過チャンクはEmbedding APIに到達する前にここで弾く
	chunks := s.chunker.Split(normalized)

	totalTokens := 0
	for _, chunk := range chunks {
		if chunk.TokenCount > s.maxChunkTokens {
			return nil, fmt.Errorf("%w: chunk %d has %d tokens (limit %d)",
				ErrChunkTokenLimit, chunk.Ordinal, chunk.TokenCount, s.maxChunkTokens)
		}
		totalTokens += chunk.TokenCount
	}

	s.logger.Info("チャンク化が完了",
		"documentID", doc.ID,
		"chunks", len(chunks),
		"totalTokens", totalTokens,
	)

	// 4. Embeddingを計算してインデックスを構築・差し替え
	snapshot, err := s.builder.Build(ctx, doc, chunks)
	if err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	s.logger.Info("ドキュメント取り込みが完了",
		"documentID", doc.ID,
		"snapshotVersion", snapshot.Version(),
		"duration", duration,
	)

	return &Result{
		Document:    doc,
		Snapshot:    snapshot,
		ChunkCount:  len(chunks),
		TotalTokens: totalTokens,
		Duration:    duration,
	}, nil
}
