package index

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/doc-tutor/internal/core/document"
)

var (
	// ErrNoDocumentLoaded はドキュメント未アップロード時のエラー
	ErrNoDocumentLoaded = errors.New("no document loaded: upload a PDF first")

	// ErrEmbeddingProvider はEmbeddingプロバイダ呼び出し失敗時のエラー
	ErrEmbeddingProvider = errors.New("embedding provider error")
)

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed はバッチでEmbeddingを生成する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)

	// MaxBatchSize はバッチ処理の最大サイズを返す
	MaxBatchSize() int
}

// Snapshot はある時点のドキュメントとそのEmbedding済みチャンク集合を表す
//
// Snapshotは構築後に変更されない。リクエスト処理はリクエスト開始時点の
// Snapshotを取得してパイプライン全体で使い回すため、処理中に新しい
// アップロードが完了しても途中で観測内容が切り替わることはない
type Snapshot struct {
	id        uuid.UUID
	version   uint64
	document  document.Document
	chunks    []document.Chunk
	vectors   [][]float32
	createdAt time.Time
}

// ID はSnapshotのIDを返す
func (s *Snapshot) ID() uuid.UUID { return s.id }

// Version はSnapshotの単調増加バージョンを返す
func (s *Snapshot) Version() uint64 { return s.version }

// Document はSnapshotが保持するドキュメントを返す
func (s *Snapshot) Document() document.Document { return s.document }

// ChunkCount はチャンク数を返す
func (s *Snapshot) ChunkCount() int { return len(s.chunks) }

// CreatedAt はSnapshotの作成日時を返す
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }
