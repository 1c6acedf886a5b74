package document

import (
	"time"

	"github.com/google/uuid"
)

// Document は現在アクティブな取り込み済みドキュメントを表す
// プロセス内で同時にアクティブになるドキュメントは常に1件のみ
type Document struct {
	ID         uuid.UUID // ドキュメントID
	Filename   string    // アップロード時のファイル名
	Size       int64     // 元ファイルのバイトサイズ
	RawText    string    // PDFから抽出した生テキスト
	Text       string    // 正規化済みテキスト
	UploadedAt time.Time // アップロード日時
}

// Chunk は正規化済みテキストの連続した断片を表す
// Embeddingの単位であり、作成後は不変
type Chunk struct {
	Ordinal    int    // ドキュメント内での順序（0始まり）
	Content    string // チャンク本文
	TokenCount int    // cl100k_base換算のトークン数
}

// ScoredChunk は検索スコア付きのチャンクを表す
type ScoredChunk struct {
	Chunk
	Score float64 // クエリとのコサイン類似度
}
