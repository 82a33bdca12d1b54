package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/fileStore"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/flatIndex"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  http.Handler
	uploads string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	idx, err := flatIndex.Open(flatIndex.Config{Dir: filepath.Join(dir, "index"), Name: "test", Dimension: 64, EmbeddingModel: "hash-test"})
	require.NoError(t, err)
	svc, err := rag.NewService(rag.Dependencies{
		Index:    idx,
		Embedder: hashEmbedding.New(64, "hash-test"),
		Chunking: ingest.Options{ChunkSize: 50, ChunkOverlap: 10},
	})
	require.NoError(t, err)
	uploads := filepath.Join(dir, "uploads")
	files, err := fileStore.New(uploads)
	require.NoError(t, err)

	h := NewHandler(svc, files)
	r := chi.NewRouter()
	r.Post("/documents", h.UploadDocumentsHandler)
	r.Get("/documents", h.ListDocumentsHandler)
	r.Get("/documents/{id}", h.GetDocumentHandler)
	r.Post("/search", h.SearchHandler)
	r.Post("/chat", h.ChatHandler)
	r.Get("/status", h.StatusHandler)
	r.Delete("/index", h.ClearIndexHandler)
	r.Get("/healthz", HealthHandler)
	return testEnv{router: r, uploads: uploads}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (e testEnv) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "test-trace"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestUploadSearchChatFlow(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartBody(t, map[string]string{
		"refunds.txt": "Refunds are issued within 30 days of purchase when the receipt is presented.",
		"virus.exe":   "MZ",
	})
	rec := env.do(t, http.MethodPost, "/documents", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var upload api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	assert.Equal(t, 1, upload.Succeeded)
	assert.Equal(t, 1, upload.Failed)
	var docId string
	for _, r := range upload.Results {
		if r.Filename == "refunds.txt" {
			assert.Equal(t, "completed", r.Status)
			docId = r.DocumentId
		} else {
			assert.Contains(t, r.Error, "File type not supported")
		}
	}
	require.NotEmpty(t, docId)

	leftovers, err := os.ReadDir(env.uploads)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "uploads should be removed after ingest")

	rec = env.do(t, http.MethodGet, "/documents/"+docId, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc api.DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "refunds.txt", doc.Filename)
	assert.Equal(t, "completed", doc.Status)

	rec = env.do(t, http.MethodGet, "/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list api.DocumentListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	rec = env.do(t, http.MethodPost, "/search", jsonBody(t, api.SearchRequest{Query: "refund receipt"}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var search api.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Equal(t, 1, search.TotalResults)
	assert.Equal(t, "refunds.txt", search.Results[0].DocumentFilename)

	rec = env.do(t, http.MethodPost, "/chat", jsonBody(t, api.ChatRequest{Message: "how do refunds work?", ConversationId: "conv-9"}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var chat api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chat))
	assert.Equal(t, "conv-9", chat.ConversationId)
	assert.False(t, chat.UsedLLM)
	assert.True(t, strings.HasPrefix(chat.Response, "Based on the uploaded documents"))

	rec = env.do(t, http.MethodGet, "/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "operational", status["status"])
	assert.EqualValues(t, 1, status["total_documents"])

	rec = env.do(t, http.MethodDelete, "/index", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vector store cleared successfully")

	rec = env.do(t, http.MethodGet, "/documents/"+docId, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejections(t *testing.T) {
	env := newTestEnv(t)

	t.Run("no files", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{})
		rec := env.do(t, http.MethodPost, "/documents", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No files provided")
	})

	t.Run("only unsupported files", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"a.png": "png"})
		rec := env.do(t, http.MethodPost, "/documents", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var res api.UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 0, res.Succeeded)
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"big.txt": strings.Repeat("a", config.MaxUploadFileSize+1)})
		rec := env.do(t, http.MethodPost, "/documents", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "10MB")
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/documents", bytes.NewBufferString("{}"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRequestValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"search empty query", "/search", `{"query":"  "}`, http.StatusBadRequest},
		{"search num_results too high", "/search", `{"query":"x","num_results":21}`, http.StatusBadRequest},
		{"search negative num_results", "/search", `{"query":"x","num_results":-1}`, http.StatusBadRequest},
		{"search bad threshold", "/search", `{"query":"x","similarity_threshold":1.5}`, http.StatusBadRequest},
		{"search malformed", "/search", `{"query":`, http.StatusBadRequest},
		{"search unknown field", "/search", `{"query":"x","k":3}`, http.StatusBadRequest},
		{"search on empty index", "/search", `{"query":"x","num_results":20}`, http.StatusOK},
		{"chat empty message", "/chat", `{"message":""}`, http.StatusBadRequest},
		{"chat too many docs", "/chat", `{"message":"x","num_context_docs":11}`, http.StatusBadRequest},
		{"chat on empty index", "/chat", `{"message":"x"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, bytes.NewBufferString(tt.body), "application/json")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusBadRequest {
				var errRes api.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errRes))
				assert.Equal(t, "test-trace", errRes.TraceId)
			}
		})
	}
}

func TestHealthAndMissingDocument(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/documents/nope", nil, "").Code)
}
