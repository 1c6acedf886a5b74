package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/jinford/doc-tutor/internal/core/ask"
	"github.com/jinford/doc-tutor/internal/core/document"
	"github.com/jinford/doc-tutor/internal/core/index"
	"github.com/jinford/doc-tutor/internal/core/ingestion"
	"github.com/jinford/doc-tutor/internal/core/study"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIngester はテスト用のIngester実装です
type stubIngester struct {
	result *ingestion.Result
	err    error
}

func (i *stubIngester) IngestPDF(ctx context.Context, r io.ReaderAt, size int64, filename string) (*ingestion.Result, error) {
	if i.err != nil {
		return nil, i.err
	}
	result := *i.result
	result.Document.Filename = filename
	result.Document.Size = size
	return &result, nil
}

// stubResponder はテスト用のResponder実装です
type stubResponder struct {
	result *ask.Result
	err    error
}

func (r *stubResponder) Answer(ctx context.Context, instruction string) (*ask.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

// stubStudy はテスト用のStudyGenerator実装です
type stubStudy struct {
	cards  []study.Flashcard
	points []string
	mcqs   []study.MCQ
	err    error
}

func (s *stubStudy) GenerateFlashcards(ctx context.Context) ([]study.Flashcard, error) {
	return s.cards, s.err
}

func (s *stubStudy) GenerateSummary(ctx context.Context) ([]string, error) {
	return s.points, s.err
}

func (s *stubStudy) GenerateMCQs(ctx context.Context) ([]study.MCQ, error) {
	return s.mcqs, s.err
}

// stubSnapshots はテスト用のSnapshotProvider実装です
type stubSnapshots struct {
	snapshot *index.Snapshot
}

func (s *stubSnapshots) Current() mo.Option[*index.Snapshot] {
	if s.snapshot == nil {
		return mo.None[*index.Snapshot]()
	}
	return mo.Some(s.snapshot)
}

type serverStubs struct {
	ingester  *stubIngester
	responder *stubResponder
	study     *stubStudy
	snapshots *stubSnapshots
}

func newTestServer(opts ...ServerOption) (*Server, *serverStubs) {
	stubs := &serverStubs{
		ingester: &stubIngester{
			result: &ingestion.Result{
				Document:   document.Document{Text: "normalized text"},
				ChunkCount: 3,
			},
		},
		responder: &stubResponder{
			result: &ask.Result{
				Answer: "the answer",
				Context: []document.ScoredChunk{
					{Chunk: document.Chunk{Ordinal: 0, Content: "context chunk"}, Score: 0.9},
				},
			},
		},
		study:     &stubStudy{},
		snapshots: &stubSnapshots{},
	}
	server := NewServer(stubs.ingester, stubs.responder, stubs.study, stubs.snapshots, opts...)
	return server, stubs
}

// pdfUploadRequest はmultipartのPDFアップロードリクエストを作ります
func pdfUploadRequest(t *testing.T, fieldName, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// TestUpload_Success は正常なPDFアップロードをテストします
func TestUpload_Success(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	req := pdfUploadRequest(t, "pdf", "lecture.pdf", "application/pdf", []byte("%PDF-1.4 dummy"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "normalized text", body["text"])
	assert.Equal(t, "lecture.pdf", body["filename"])
	assert.NotZero(t, body["size"])
	assert.Contains(t, body["message"], "3 chunks")
}

// TestUpload_MissingFile はファイルフィールド欠落が400になることをテストします
func TestUpload_MissingFile(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "pdf")
}

// TestUpload_NonPDF はPDF以外のファイルが400になることをテストします
func TestUpload_NonPDF(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	req := pdfUploadRequest(t, "pdf", "notes.txt", "text/plain", []byte("plain text"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "PDF")
}

// TestUpload_Oversize はサイズ上限超過が400になることをテストします
func TestUpload_Oversize(t *testing.T) {
	server, _ := newTestServer(WithMaxUploadBytes(10))
	handler := server.Handler()

	req := pdfUploadRequest(t, "pdf", "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 100))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestUpload_PipelineFailure は取り込みパイプラインの失敗が500になることをテストします
func TestUpload_PipelineFailure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.ingester.err = document.ErrEmptyDocument
	handler := server.Handler()

	req := pdfUploadRequest(t, "pdf", "empty.pdf", "application/pdf", []byte("%PDF-"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "no extractable text")
}

// TestChat_Success は正常系のチャット応答をテストします
func TestChat_Success(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"What is this?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "the answer", body["response"])

	contextChunks, ok := body["context"].([]any)
	require.True(t, ok)
	assert.Len(t, contextChunks, 1)

	// タイムスタンプはRFC3339としてパースできる
	timestampStr, ok := body["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, timestampStr)
	assert.NoError(t, err)
}

// TestChat_NoDocumentLoaded はアップロード前のチャットが400になることをテストします
func TestChat_NoDocumentLoaded(t *testing.T) {
	server, stubs := newTestServer()
	stubs.responder.err = index.ErrNoDocumentLoaded
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"hello"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "no document loaded")
}

// TestChat_InvalidBody は不正なリクエストボディが400になることをテストします
func TestChat_InvalidBody(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	tests := []struct {
		name string
		body string
	}{
		{name: "不正なJSON", body: `{not json}`},
		{name: "questionが空", body: `{"question":""}`},
		{name: "questionが空白のみ", body: `{"question":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// TestChat_GenerationFailure は生成プロバイダの失敗が500になることをテストします
func TestChat_GenerationFailure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.responder.err = ask.ErrGenerationProvider
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"hello"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestFlashcards_Success はフラッシュカード生成エンドポイントをテストします
func TestFlashcards_Success(t *testing.T) {
	server, stubs := newTestServer()
	stubs.study.cards = []study.Flashcard{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/flashcards", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["count"])

	cards, ok := body["flashcards"].([]any)
	require.True(t, ok)
	require.Len(t, cards, 2)
	first, ok := cards[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Q1", first["question"])
}

// TestFlashcards_NoDocumentLoaded はアップロード前の呼び出しが400になることをテストします
func TestFlashcards_NoDocumentLoaded(t *testing.T) {
	server, stubs := newTestServer()
	stubs.study.err = index.ErrNoDocumentLoaded
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/flashcards", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestFlashcards_MalformedOutput はモデル出力不正が500になることをテストします
func TestFlashcards_MalformedOutput(t *testing.T) {
	server, stubs := newTestServer()
	stubs.study.err = study.ErrMalformedOutput
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/flashcards", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "malformed model output")
}

// TestSummarize_Success は要約エンドポイントをテストします
func TestSummarize_Success(t *testing.T) {
	server, stubs := newTestServer()
	stubs.study.points = []string{"point one", "point two", "point three"}
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 3, body["count"])
}

// TestMCQ_Success は4択問題エンドポイントをテストします
func TestMCQ_Success(t *testing.T) {
	server, stubs := newTestServer()
	stubs.study.mcqs = []study.MCQ{
		{
			Question:      "Q",
			Options:       map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
			CorrectAnswer: "D",
		},
	}
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/mcq", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])

	mcqs, ok := body["mcqs"].([]any)
	require.True(t, ok)
	first, ok := mcqs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "D", first["correct_answer"])
}

// TestHealth はヘルスチェックエンドポイントをテストします
func TestHealth(t *testing.T) {
	server, stubs := newTestServer()
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["document_loaded"])

	// ドキュメントロード後はtrueになる
	stubs.snapshots.snapshot = &index.Snapshot{}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, true, decodeBody(t, rec)["document_loaded"])
}

// TestDocument_NoDocumentLoaded はドキュメント未ロード時の/documentが400になることをテストします
func TestDocument_NoDocumentLoaded(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestMethodNotAllowed はメソッド違反が405になることをテストします
func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer()
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestErrorResponseIsJSON はエラーレスポンスがJSON形式であることをテストします
func TestErrorResponseIsJSON(t *testing.T) {
	server, stubs := newTestServer()
	stubs.responder.err = errors.New("provider exploded")
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "provider exploded", decodeBody(t, rec)["error"])
}
