package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEmbedderOptionsOverrideDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key",
		WithEmbeddingModel("custom-model"),
		WithEmbeddingDimension(42),
	)

	assert.Equal(t, "custom-model", embedder.ModelName())
	assert.Equal(t, 42, embedder.Dimension())
}

func TestNewEmbedderDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	assert.Equal(t, DefaultEmbeddingModel, embedder.ModelName())
	assert.Equal(t, DefaultEmbeddingDimension, embedder.Dimension())
	assert.Equal(t, maxEmbeddingBatchSize, embedder.MaxBatchSize())
}

func TestBatchEmbedRejectsInvalidBatch(t *testing.T) {
	embedder := NewEmbedder("dummy-key")
	ctx := context.Background()

	// 空バッチ
	_, err := embedder.BatchEmbed(ctx, nil)
	assert.Error(t, err)

	// バッチ上限超過（API呼び出し前に弾かれる）
	texts := make([]string, maxEmbeddingBatchSize+1)
	for i := range texts {
		texts[i] = "text"
	}
	_, err = embedder.BatchEmbed(ctx, texts)
	assert.Error(t, err)
}
