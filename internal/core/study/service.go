package study

import (
	"context"
	"log/slog"

	"github.com/jinford/doc-tutor/internal/core/ask"
)

// Responder は指示テキストからRAGベースの応答を生成するインターフェース
type Responder interface {
	Answer(ctx context.Context, instruction string) (*ask.Result, error)
}

// Service は学習教材（フラッシュカード・要約・4択問題）の生成を提供する
//
// 3つの生成はすべて同じアルゴリズムを共有する: 固定の指示テキストで
// Responderに応答させ、その自由形式テキストを構造化抽出にかける
type Service struct {
	responder Responder
	logger    *slog.Logger
}

type serviceOptions struct {
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService は新しいServiceを作成する
func NewService(responder Responder, opts ...ServiceOption) *Service {
	options := serviceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		responder: responder,
		logger:    options.logger,
	}
}

// GenerateFlashcards はフラッシュカードを生成する
func (s *Service) GenerateFlashcards(ctx context.Context) ([]Flashcard, error) {
	result, err := s.responder.Answer(ctx, flashcardInstruction)
	if err != nil {
		return nil, err
	}

	cards, err := ExtractFlashcards(result.Answer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("フラッシュカードを生成", "count", len(cards))
	return cards, nil
}

// GenerateSummary は要約ポイントを生成する
func (s *Service) GenerateSummary(ctx context.Context) ([]string, error) {
	result, err := s.responder.Answer(ctx, summaryInstruction)
	if err != nil {
		return nil, err
	}

	points, err := ExtractSummary(result.Answer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("要約を生成", "count", len(points))
	return points, nil
}

// GenerateMCQs は4択問題を生成する
func (s *Service) GenerateMCQs(ctx context.Context) ([]MCQ, error) {
	result, err := s.responder.Answer(ctx, mcqInstruction)
	if err != nil {
		return nil, err
	}

	mcqs, err := ExtractMCQs(result.Answer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("4択問題を生成", "count", len(mcqs))
	return mcqs, nil
}
