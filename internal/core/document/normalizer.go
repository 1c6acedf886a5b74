package document

import (
	"errors"
	"strings"
)

// ErrEmptyDocument は抽出されたテキストが空だった場合のエラー
// これがインデックス投入前の唯一のバリデーションゲートとなる
var ErrEmptyDocument = errors.New("no extractable text found in document")

// Normalize は抽出された生テキストを正規化する
// 連続する空白文字（改行・タブ・制御文字由来の空白を含む）を
// 単一の半角スペースに畳み込み、前後の空白を取り除く
// 正規化結果が空文字列の場合は ErrEmptyDocument を返す
func Normalize(raw string) (string, error) {
	// 不正なUTF-8バイト列はPDF抽出で混入しうるため除去しておく
	cleaned := strings.ToValidUTF8(raw, " ")

	// strings.Fields は unicode.IsSpace に基づいて空白の連続で分割する
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return "", ErrEmptyDocument
	}

	return strings.Join(fields, " "), nil
}
