package document

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultChunkSize はチャンクの目標文字数（rune数）
	DefaultChunkSize = 1000

	// DefaultChunkOverlap は隣接チャンクのオーバーラップ文字数
	DefaultChunkOverlap = 200
)

// Chunker は正規化済みテキストを固定長のオーバーラップ付きチャンクに分割します
//
// 分割は固定ストライド（size - overlap）で行う。先頭チャンク以外は
// 直前のチャンクと overlap 文字を共有するため、オーバーラップを除いて
// 連結すると元のテキストが完全に復元できる
type Chunker struct {
	encoder *tiktoken.Tiktoken

	size    int // チャンクの目標文字数
	overlap int // オーバーラップ文字数
}

// NewChunker は新しいChunkerを作成します
// overlap は size 未満でなければならない
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}

	// cl100k_baseエンコーダを使用（OpenAIのtext-embedding-3-smallと互換）
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoder: %w", err)
	}

	return &Chunker{
		encoder: encoder,
		size:    size,
		overlap: overlap,
	}, nil
}

// Size はチャンクの目標文字数を返します
func (c *Chunker) Size() int { return c.size }

// Overlap はオーバーラップ文字数を返します
func (c *Chunker) Overlap() int { return c.overlap }

// Split はテキストをチャンク化します
// 文字数はマルチバイト文字を正しく扱うためrune単位で数える
// テキストがチャンクサイズ以下の場合はチャンク1件を返す
func (c *Chunker) Split(text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	stride := c.size - c.overlap

	var chunks []Chunk
	for start := 0; ; start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		content := string(runes[start:end])
		chunks = append(chunks, Chunk{
			Ordinal:    len(chunks),
			Content:    content,
			TokenCount: c.countTokens(content),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// countTokens はテキストのトークン数を数えます
func (c *Chunker) countTokens(text string) int {
	return len(c.encoder.Encode(text, nil, nil))
}
