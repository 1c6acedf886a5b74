package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/doc-tutor/internal/core/document"
	"github.com/samber/mo"
)

// Store はプロセス内で唯一の「現在のインデックス」を管理する
//
// Buildが成功するたびに新しいSnapshotがアトミックに差し替えられ、
// 古いSnapshotは参照されなくなった時点で破棄される。永続化は行わない
type Store struct {
	embedder Embedder
	logger   *slog.Logger

	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

type storeOptions struct {
	logger *slog.Logger
}

// StoreOption は Store のオプション設定
type StoreOption func(*storeOptions)

// WithStoreLogger は Store にロガーを設定する
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// NewStore は新しいStoreを作成する
func NewStore(embedder Embedder, opts ...StoreOption) *Store {
	options := storeOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Store{
		embedder: embedder,
		logger:   options.logger,
	}
}

// Build は全チャンクのEmbeddingを計算し、新しいSnapshotを構築して差し替える
// Embedding生成に失敗した場合は ErrEmbeddingProvider を返し、
// 既存のSnapshotは変更されない
func (s *Store) Build(ctx context.Context, doc document.Document, chunks []document.Chunk) (*Snapshot, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	startTime := time.Now()

	// Embedding APIのバッチ上限に合わせて分割して呼び出す
	vectors := make([][]float32, 0, len(chunks))
	batchSize := s.embedder.MaxBatchSize()
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batch, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingProvider, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingProvider, len(texts), len(batch))
		}
		vectors = append(vectors, batch...)
	}

	snapshot := &Snapshot{
		id:        uuid.New(),
		version:   s.version.Add(1),
		document:  doc,
		chunks:    chunks,
		vectors:   vectors,
		createdAt: time.Now(),
	}

	// ここで初めて公開する。途中で失敗した場合は旧Snapshotが生き続ける
	s.current.Store(snapshot)

	s.logger.Info("インデックスを構築",
		"snapshotID", snapshot.id,
		"version", snapshot.version,
		"filename", doc.Filename,
		"chunks", len(chunks),
		"duration", time.Since(startTime),
	)

	return snapshot, nil
}

// Current は現在のSnapshotを返す
// まだBuildが成功していない場合は None を返す
func (s *Store) Current() mo.Option[*Snapshot] {
	snapshot := s.current.Load()
	if snapshot == nil {
		return mo.None[*Snapshot]()
	}
	return mo.Some(snapshot)
}

// Retrieve はクエリに最も近い上位kチャンクを類似度降順で返す
// Snapshotは呼び出し開始時点のものを使用する
func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]document.ScoredChunk, error) {
	snapshotOpt := s.Current()
	if snapshotOpt.IsAbsent() {
		return nil, ErrNoDocumentLoaded
	}
	snapshot := snapshotOpt.MustGet()

	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if k <= 0 {
		k = 4
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingProvider, err)
	}

	results := make([]document.ScoredChunk, 0, len(snapshot.chunks))
	for i, chunk := range snapshot.chunks {
		results = append(results, document.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(queryVector, snapshot.vectors[i]),
		})
	}

	// スコア降順、同点はOrdinal昇順で安定に並べる
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Ordinal < results[j].Ordinal
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// cosineSimilarity は2つのベクトルのコサイン類似度を計算する
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
