package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jinford/doc-tutor/internal/core/ask"
	"github.com/jinford/doc-tutor/internal/core/index"
	"github.com/jinford/doc-tutor/internal/core/ingestion"
	"github.com/jinford/doc-tutor/internal/core/study"
	"github.com/samber/mo"
)

// DefaultMaxUploadBytes はアップロードサイズ上限のデフォルト値（10MiB）
const DefaultMaxUploadBytes int64 = 10 << 20

// Ingester はPDF取り込みインターフェース
type Ingester interface {
	IngestPDF(ctx context.Context, r io.ReaderAt, size int64, filename string) (*ingestion.Result, error)
}

// Responder はRAG応答生成インターフェース
type Responder interface {
	Answer(ctx context.Context, instruction string) (*ask.Result, error)
}

// StudyGenerator は学習教材生成インターフェース
type StudyGenerator interface {
	GenerateFlashcards(ctx context.Context) ([]study.Flashcard, error)
	GenerateSummary(ctx context.Context) ([]string, error)
	GenerateMCQs(ctx context.Context) ([]study.MCQ, error)
}

// SnapshotProvider は現在のインデックスSnapshotを提供するインターフェース
type SnapshotProvider interface {
	Current() mo.Option[*index.Snapshot]
}

// Server はHTTP APIサーバ
type Server struct {
	ingester  Ingester
	responder Responder
	study     StudyGenerator
	snapshots SnapshotProvider

	maxUploadBytes int64
	logger         *slog.Logger
}

type serverOptions struct {
	maxUploadBytes int64
	logger         *slog.Logger
}

// ServerOption は Server のオプション設定
type ServerOption func(*serverOptions)

// WithMaxUploadBytes はアップロードサイズ上限を上書きする
func WithMaxUploadBytes(maxBytes int64) ServerOption {
	return func(o *serverOptions) {
		o.maxUploadBytes = maxBytes
	}
}

// WithServerLogger は Server にロガーを設定する
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// NewServer は新しいServerを作成する
func NewServer(ingester Ingester, responder Responder, studyGen StudyGenerator, snapshots SnapshotProvider, opts ...ServerOption) *Server {
	options := serverOptions{
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxUploadBytes <= 0 {
		options.maxUploadBytes = DefaultMaxUploadBytes
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Server{
		ingester:       ingester,
		responder:      responder,
		study:          studyGen,
		snapshots:      snapshots,
		maxUploadBytes: options.maxUploadBytes,
		logger:         options.logger,
	}
}

// Handler はルーティング済みのhttp.Handlerを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /flashcards", s.handleFlashcards)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("POST /mcq", s.handleMCQ)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /document", s.handleDocument)

	return s.withRecovery(s.withRequestLog(mux))
}

// Run はHTTPサーバを起動し、ctxのキャンセルでGraceful Shutdownする
func (s *Server) Run(ctx context.Context, port int) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("HTTPサーバを起動", "port", port)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("HTTPサーバを停止中")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	}
}
