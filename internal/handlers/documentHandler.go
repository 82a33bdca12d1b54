package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/akolanti/DocRAG/internal/adapter"
	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/fileStore"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
)

// UploadDocumentsHandler handles the uploading of documents for RAG ingestion.
// @Summary      Upload documents for ingestion
// @Description  Receives one or more files via multipart/form-data, ingests each one and returns a result per file. Temporary files are removed afterwards.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "PDF, DOCX, TXT or MD files, 10MB each"
// @Success      201  {object}  api.UploadResponse  "At least one document was ingested"
// @Failure      400  {object}  api.UploadResponse  "No file could be ingested"
// @Failure      400  {object}  api.ErrorResponse   "Missing files or malformed form"
// @Failure      500  {object}  api.ErrorResponse   "Storage error"
// @Router       /documents [post]
func (h *Handler) UploadDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.WithTrace(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBatchSize)
	if err := r.ParseMultipartForm(config.MaxUploadFileSize); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "File too large or bad request")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("Couldn't remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		WriteErrorResponse(w, r, http.StatusBadRequest, "No files provided")
		return
	}

	results := make([]commonModels.IngestResult, len(headers))
	var (
		reqs  []rag.IngestRequest
		slots []int
	)
	for i, fh := range headers {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !slices.Contains(ingest.SupportedExtensions(), ext) {
			results[i] = adapter.FailedUpload(fh.Filename, "File type not supported. Allowed types: "+strings.Join(ingest.SupportedExtensions(), ", "))
			continue
		}
		if fh.Size > config.MaxUploadFileSize {
			results[i] = adapter.FailedUpload(fh.Filename, "File size must be less than 10MB")
			continue
		}

		src, err := fh.Open()
		if err != nil {
			results[i] = adapter.FailedUpload(fh.Filename, "Could not read file")
			continue
		}
		path, size, err := h.files.Save(fh.Filename, src, config.MaxUploadFileSize)
		_ = src.Close()
		if err != nil {
			if errors.Is(err, fileStore.ErrFileTooLarge) {
				results[i] = adapter.FailedUpload(fh.Filename, "File size must be less than 10MB")
				continue
			}
			log.Error("Couldn't store upload", "filename", fh.Filename, "error", err)
			results[i] = adapter.FailedUpload(fh.Filename, "Storage error")
			continue
		}

		reqs = append(reqs, rag.IngestRequest{
			DocumentId:  utils.GetNewUUID(),
			Path:        path,
			Name:        fh.Filename,
			ContentType: ext,
			Size:        size,
		})
		slots = append(slots, i)
	}

	if len(reqs) > 0 {
		defer h.cleanup(r, reqs)
		for j, res := range h.service.IngestBatch(r.Context(), reqs) {
			results[slots[j]] = res
		}
	}

	res, succeeded := adapter.ToUploadResponse(results)
	log.Info("Upload processed", "files", len(headers), "succeeded", succeeded)
	if succeeded == 0 {
		writeJsonResponse(w, http.StatusBadRequest, res)
		return
	}
	writeJsonResponse(w, http.StatusCreated, res)
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Description  Returns every uploaded document with its processing status, newest first.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [get]
func (h *Handler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	docs, err := h.service.Documents(r.Context())
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Couldn't list documents", "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentList(docs))
}

// GetDocumentHandler godoc
// @Summary      Get a document
// @Description  Returns one document and its processing status.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
func (h *Handler) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	logRH.WithTrace(r.Context()).Debug("Get Document Request", "URL path", r.URL.Path)
	if id == "" {
		WriteErrorResponse(w, r, http.StatusNotFound, "Document not found")
		return
	}
	doc, found := h.service.Document(r.Context(), id)
	if !found {
		WriteErrorResponse(w, r, http.StatusNotFound, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

func (h *Handler) cleanup(r *http.Request, reqs []rag.IngestRequest) {
	for _, req := range reqs {
		h.files.Remove(req.Path)
	}
}
