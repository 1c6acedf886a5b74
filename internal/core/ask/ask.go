package ask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jinford/doc-tutor/internal/core/document"
)

// ErrGenerationProvider は生成プロバイダ呼び出し失敗時のエラー
var ErrGenerationProvider = errors.New("generation provider error")

// DefaultTopK は検索で取得するチャンク数のデフォルト値
const DefaultTopK = 4

// Retriever はクエリに関連するチャンクを検索するインターフェース
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]document.ScoredChunk, error)
}

// LLMClient はLLM通信インターフェース
type LLMClient interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// Result は応答生成の結果を表す
type Result struct {
	Answer  string                 // LLMによる応答テキスト
	Context []document.ScoredChunk // 根拠として使用したチャンク
}

// Service はRAGベースの応答生成を提供する
//
// 呼び出し側が応答をどう扱うかには関知しない。自由形式のチャットも
// 構造化抽出も、渡す指示テキストが異なるだけで同じ契約を共有する
type Service struct {
	retriever Retriever
	llm       LLMClient
	topK      int
	logger    *slog.Logger
}

type serviceOptions struct {
	topK   int
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithTopK は検索チャンク数を上書きする
func WithTopK(topK int) ServiceOption {
	return func(o *serviceOptions) {
		o.topK = topK
	}
}

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService は新しいServiceを作成する
func NewService(retriever Retriever, llm LLMClient, opts ...ServiceOption) *Service {
	options := serviceOptions{
		topK:   DefaultTopK,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.topK <= 0 {
		options.topK = DefaultTopK
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		retriever: retriever,
		llm:       llm,
		topK:      options.topK,
		logger:    options.logger,
	}
}

// Answer は指示テキストに対してRAGベースで応答を生成する
// 指示テキスト自身を検索クエリとして関連チャンクを取得し、
// それをコンテキストとしてLLMに応答させる
func (s *Service) Answer(ctx context.Context, instruction string) (*Result, error) {
	// 1. バリデーション
	if instruction == "" {
		return nil, fmt.Errorf("instruction is required")
	}

	// 2. 関連チャンクを検索（ドキュメント未ロードのエラーはそのまま伝播）
	chunks, err := s.retriever.Retrieve(ctx, instruction, s.topK)
	if err != nil {
		return nil, err
	}

	s.logger.Info("関連チャンクを取得",
		"chunks", len(chunks),
		"topK", s.topK,
	)

	// 3. プロンプトを構築してLLMで応答生成
	prompt := BuildAnswerPrompt(instruction, chunks)

	answer, err := s.llm.GenerateCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationProvider, err)
	}

	s.logger.Info("応答生成が完了",
		"answerLength", len(answer),
	)

	return &Result{
		Answer:  answer,
		Context: chunks,
	}, nil
}
