package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// AskAction はPDFを取り込んで1回だけ質問に回答するコマンドのアクション
// HTTPサーバを立てずに取り込み→検索→応答生成のパイプライン全体を実行する
func AskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	filePath := cmd.String("file")
	question := cmd.String("question")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	cont := appCtx.Container

	// PDFを開いて取り込む
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("PDFファイルを開けませんでした: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("PDFファイルの情報取得に失敗: %w", err)
	}

	result, err := cont.IngestService().IngestPDF(ctx, file, info.Size(), info.Name())
	if err != nil {
		return fmt.Errorf("ドキュメントの取り込みに失敗: %w", err)
	}

	appCtx.Logger().Info("ドキュメントを取り込みました",
		"filename", result.Document.Filename,
		"chunks", result.ChunkCount,
	)

	// 質問に回答
	answer, err := cont.AskService().Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("応答生成に失敗: %w", err)
	}

	fmt.Println(answer.Answer)
	return nil
}
