package commands

import (
	"context"

	"github.com/jinford/doc-tutor/internal/interface/httpapi"
	"github.com/urfave/cli/v3"
)

// ServerStartAction はHTTPサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	port := int(cmd.Int("port"))

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	cont := appCtx.Container
	if port <= 0 {
		port = cont.Config().HTTP.Port
	}

	server := httpapi.NewServer(
		cont.IngestService(),
		cont.AskService(),
		cont.StudyService(),
		cont.Store(),
		httpapi.WithMaxUploadBytes(cont.Config().Ingest.MaxUploadBytes),
		httpapi.WithServerLogger(appCtx.Logger()),
	)

	return server.Run(ctx, port)
}
