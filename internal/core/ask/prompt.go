package ask

import (
	"fmt"
	"strings"

	"github.com/jinford/doc-tutor/internal/core/document"
)

// BuildAnswerPrompt はRAG応答生成用のプロンプトを構築する
// 検索で得たチャンクを根拠コンテキストとして並べ、最後に指示テキストを
// そのまま付加する
func BuildAnswerPrompt(instruction string, chunks []document.ScoredChunk) string {
	var sb strings.Builder

	// システムプロンプトとガイドライン
	sb.WriteString("あなたはアップロードされたドキュメントの内容に精通した学習アシスタントです。\n")
	sb.WriteString("以下のコンテキスト情報のみを根拠として、指示に正確に従ってください。\n\n")

	sb.WriteString("## 回答のガイドライン\n")
	sb.WriteString("- コンテキストに含まれる情報のみを使用してください\n")
	sb.WriteString("- コンテキストから判断できない場合は、推測せずにその旨を述べてください\n")
	sb.WriteString("- 回答はドキュメントと同じ言語で記述してください\n\n")

	// 根拠コンテキスト
	sb.WriteString("## コンテキスト: ドキュメント抜粋\n")
	if len(chunks) > 0 {
		for i, chunk := range chunks {
			sb.WriteString(fmt.Sprintf("### [抜粋 %d] 関連度: %.3f\n", i+1, chunk.Score))
			sb.WriteString(chunk.Content)
			sb.WriteString("\n\n")
		}
	} else {
		sb.WriteString("(該当する抜粋はありません)\n\n")
	}

	// 指示テキスト
	sb.WriteString("## 指示\n")
	sb.WriteString(instruction)
	sb.WriteString("\n")

	return sb.String()
}
