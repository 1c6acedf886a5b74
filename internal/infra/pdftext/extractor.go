package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Extractor はPDFバイナリからプレーンテキストを抽出する
type Extractor struct{}

// NewExtractor は新しいExtractorを作成する
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract はPDFの全ページからプレーンテキストを抽出する
// 暗号化PDFや壊れたPDFの場合はエラーを返す
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plainText); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return buf.String(), nil
}
