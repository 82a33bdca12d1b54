package handlers

import (
	"net/http"

	"github.com/akolanti/DocRAG/internal/api"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// StatusHandler godoc
// @Summary      Service status
// @Description  Index statistics, document counts by status and the enabled features.
// @Tags         Status
// @Produce      json
// @Success      200  {object}  rag.Status
// @Router       /status [get]
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	writeJsonResponse(w, http.StatusOK, h.service.Stats(r.Context()))
}

// ClearIndexHandler godoc
// @Summary      Clear the vector store
// @Description  Removes every vector, the document records and the answer cache.
// @Tags         Status
// @Produce      json
// @Success      200  {object}  api.ClearResponse
// @Failure      500  {object}  api.ErrorResponse  "Index files could not be removed"
// @Router       /index [delete]
func (h *Handler) ClearIndexHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if err := h.service.ClearIndex(r.Context()); err != nil {
		logRH.WithTrace(r.Context()).Error("Error clearing vector store", "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Failed to clear vector store")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.ClearResponse{Message: "Vector store cleared successfully"})
}
