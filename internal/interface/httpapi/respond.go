package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jinford/doc-tutor/internal/core/index"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON はJSONレスポンスを書き込む
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("レスポンスの書き込みに失敗", "error", err)
	}
}

// writeError はエラー種別からHTTPステータスを決めてエラーレスポンスを書き込む
//
// 前提条件エラー（不正なアップロード・ドキュメント未ロード）は400、
// それ以外はすべて500とし、エラーメッセージをそのままerrorフィールドで返す
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeErrorStatus(w, statusForError(err), err)
}

// writeErrorStatus は指定ステータスでエラーレスポンスを書き込む
func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("リクエスト処理に失敗", "status", status, "error", err)
	} else {
		s.logger.Warn("リクエストを拒否", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError はエラー種別をHTTPステータスにマッピングする
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidUpload),
		errors.Is(err, index.ErrNoDocumentLoaded):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
