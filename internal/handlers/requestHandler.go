package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/akolanti/DocRAG/internal/adapter"
	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
)

// SearchHandler godoc
// @Summary      Search documents
// @Description  Embeds the query and returns the most similar chunks, best first.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest   true  "Query, num_results (1-20) and optional similarity threshold"
// @Success      200      {object}  api.SearchResponse
// @Failure      400      {object}  api.ErrorResponse  "Invalid request data"
// @Failure      500      {object}  api.ErrorResponse  "Search failed"
// @Router       /search [post]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		logRH.WithTrace(r.Context()).Warn("Bad Search Request", "error", err)
		WriteErrorResponse(w, r, http.StatusBadRequest, "Bad Request")
		return
	}
	if msg := validateSearchRequest(&req); msg != "" {
		WriteErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	results, err := h.service.Query(r.Context(), req.Query, req.NumResults, req.SimilarityThreshold)
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Error searching documents", "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Search failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(req.Query, results))
}

// ChatHandler godoc
// @Summary      Ask a question about the documents
// @Description  Retrieves context for the message and answers it with the configured LLM, or with a templated answer built from the retrieved chunks.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest    true  "Message, optional conversation id, num_context_docs (1-10)"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Invalid request data"
// @Failure      500      {object}  api.ErrorResponse  "Chat failed"
// @Router       /chat [post]
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		logRH.WithTrace(r.Context()).Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, r, http.StatusBadRequest, "Bad Request")
		return
	}
	if msg := validateChatRequest(&req); msg != "" {
		WriteErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	ans, err := h.service.Answer(r.Context(), rag.AnswerRequest{
		Question:            req.Message,
		K:                   req.NumContextDocs,
		SimilarityThreshold: req.SimilarityThreshold,
		ConversationId:      req.ConversationId,
	})
	if err != nil {
		if errors.Is(err, commonModels.ErrEmptyQuestion) {
			WriteErrorResponse(w, r, http.StatusBadRequest, "message is required")
			return
		}
		logRH.WithTrace(r.Context()).Error("Error in RAG chat", "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Chat failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(req.Message, ans))
}

func validateSearchRequest(req *api.SearchRequest) string {
	if strings.TrimSpace(req.Query) == "" {
		return "query is required"
	}
	if req.NumResults == 0 {
		req.NumResults = config.DefaultSearchResults
	}
	if req.NumResults < 1 || req.NumResults > config.MaxSearchResults {
		return "num_results must be between 1 and 20"
	}
	if req.SimilarityThreshold < 0 || req.SimilarityThreshold > 1 {
		return "similarity_threshold must be between 0 and 1"
	}
	return ""
}

func validateChatRequest(req *api.ChatRequest) string {
	if strings.TrimSpace(req.Message) == "" {
		return "message is required"
	}
	if req.NumContextDocs == 0 {
		req.NumContextDocs = config.DefaultContextDocs
	}
	if req.NumContextDocs < 1 || req.NumContextDocs > config.MaxContextDocs {
		return "num_context_docs must be between 1 and 10"
	}
	if req.SimilarityThreshold < 0 || req.SimilarityThreshold > 1 {
		return "similarity_threshold must be between 0 and 1"
	}
	return ""
}
