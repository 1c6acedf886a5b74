package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jinford/doc-tutor/internal/core/document"
	"github.com/jinford/doc-tutor/internal/core/index"
)

// ErrInvalidUpload は不正なアップロードリクエストのエラー
var ErrInvalidUpload = errors.New("invalid upload")

type uploadResponse struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Message  string `json:"message"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Response  string   `json:"response"`
	Context   []string `json:"context"`
	Timestamp string   `json:"timestamp"`
}

type flashcardsResponse struct {
	Flashcards any    `json:"flashcards"`
	Count      int    `json:"count"`
	Timestamp  string `json:"timestamp"`
}

type summaryResponse struct {
	Summary   []string `json:"summary"`
	Count     int      `json:"count"`
	Timestamp string   `json:"timestamp"`
}

type mcqResponse struct {
	MCQs      any    `json:"mcqs"`
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

type documentResponse struct {
	Filename        string `json:"filename"`
	Size            int64  `json:"size"`
	ChunkCount      int    `json:"chunk_count"`
	UploadedAt      string `json:"uploaded_at"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// handleUpload はPDFを受け取り、取り込みパイプラインを実行する
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+(1<<20)) // multipart境界分の余裕を持たせる

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, fmt.Errorf("%w: failed to parse multipart form: %v", ErrInvalidUpload, err))
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: multipart field %q with a PDF file is required", ErrInvalidUpload, "pdf"))
		return
	}
	defer file.Close()

	if !isPDF(header.Header.Get("Content-Type"), header.Filename) {
		s.writeError(w, fmt.Errorf("%w: only PDF files are accepted", ErrInvalidUpload))
		return
	}
	if header.Size > s.maxUploadBytes {
		s.writeError(w, fmt.Errorf("%w: file exceeds maximum size of %d bytes", ErrInvalidUpload, s.maxUploadBytes))
		return
	}

	result, err := s.ingester.IngestPDF(r.Context(), file, header.Size, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Text:     result.Document.Text,
		Filename: result.Document.Filename,
		Size:     result.Document.Size,
		Message:  fmt.Sprintf("document indexed: %d chunks", result.ChunkCount),
	})
}

// handleChat は質問に対する自由形式の応答を返す
// 応答テキストは構造検証なしでそのまま返す
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeErrorStatus(w, http.StatusBadRequest, errors.New("question is required"))
		return
	}

	result, err := s.responder.Answer(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Response:  result.Answer,
		Context:   chunkContents(result.Context),
		Timestamp: timestamp(),
	})
}

// handleFlashcards はフラッシュカードを生成して返す
func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.study.GenerateFlashcards(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, flashcardsResponse{
		Flashcards: cards,
		Count:      len(cards),
		Timestamp:  timestamp(),
	})
}

// handleSummarize は要約ポイントを生成して返す
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	points, err := s.study.GenerateSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summaryResponse{
		Summary:   points,
		Count:     len(points),
		Timestamp: timestamp(),
	})
}

// handleMCQ は4択問題を生成して返す
func (s *Server) handleMCQ(w http.ResponseWriter, r *http.Request) {
	mcqs, err := s.study.GenerateMCQs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, mcqResponse{
		MCQs:      mcqs,
		Count:     len(mcqs),
		Timestamp: timestamp(),
	})
}

// handleHealth は稼働状態とドキュメントのロード有無を返す
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"document_loaded": s.snapshots.Current().IsPresent(),
	})
}

// handleDocument は現在のドキュメントのメタデータを返す
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	snapshotOpt := s.snapshots.Current()
	if snapshotOpt.IsAbsent() {
		s.writeError(w, index.ErrNoDocumentLoaded)
		return
	}
	snapshot := snapshotOpt.MustGet()
	doc := snapshot.Document()

	s.writeJSON(w, http.StatusOK, documentResponse{
		Filename:        doc.Filename,
		Size:            doc.Size,
		ChunkCount:      snapshot.ChunkCount(),
		UploadedAt:      doc.UploadedAt.UTC().Format(time.RFC3339),
		SnapshotVersion: snapshot.Version(),
	})
}

// isPDF はContent-Typeまたは拡張子からPDFかどうかを判定する
func isPDF(contentType, filename string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// chunkContents はスコア付きチャンクから本文のみを取り出す
func chunkContents(chunks []document.ScoredChunk) []string {
	contents := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		contents = append(contents, chunk.Content)
	}
	return contents
}

// timestamp はレスポンス用のRFC3339形式のタイムスタンプを返す
func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
