package handlers

import (
	"github.com/akolanti/DocRAG/internal/data/fileStore"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// Handler serves the HTTP API on top of a rag.Service. Uploaded files go through files and are
// removed once ingested.
type Handler struct {
	service rag.Service
	files   *fileStore.FileStore
}

func NewHandler(service rag.Service, files *fileStore.FileStore) *Handler {
	logRH.Info("Starting request handler")
	return &Handler{service: service, files: files}
}
