package adapter

import (
	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

func ToUploadResponse(results []commonModels.IngestResult) (api.UploadResponse, int) {
	res := api.UploadResponse{Results: make([]api.UploadResult, len(results))}
	for i, r := range results {
		res.Results[i] = api.UploadResult{
			Filename:     r.Filename,
			Status:       string(r.Status),
			DocumentId:   r.DocumentId,
			TotalChunks:  r.TotalChunks,
			TotalVectors: r.TotalVectors,
			Error:        r.Error,
		}
		if r.Status == commonModels.StatusCompleted {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	switch {
	case res.Failed == 0:
		res.Message = "Documents processed successfully"
	case res.Succeeded == 0:
		res.Message = "No documents could be processed"
	default:
		res.Message = "Some documents could not be processed"
	}
	return res, res.Succeeded
}

// FailedUpload is the per-file result for a file rejected before ingestion.
func FailedUpload(filename string, reason string) commonModels.IngestResult {
	return commonModels.IngestResult{
		Status:   commonModels.StatusFailed,
		Filename: filename,
		Error:    reason,
	}
}

func ToDocumentResponse(doc commonModels.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:              doc.Id,
		Filename:        doc.Name,
		FileSize:        doc.Size,
		ContentType:     string(doc.ContentType),
		Status:          string(doc.Status),
		ProcessingError: doc.ProcessingError,
		TotalChunks:     doc.TotalChunks,
		EmbeddingModel:  doc.EmbeddingModel,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func ToDocumentList(docs []commonModels.Document) api.DocumentListResponse {
	out := api.DocumentListResponse{Documents: make([]api.DocumentResponse, len(docs)), Total: len(docs)}
	for i, d := range docs {
		out.Documents[i] = ToDocumentResponse(d)
	}
	return out
}

func ToSearchResults(results []commonModels.SearchResult) []api.SearchResult {
	out := make([]api.SearchResult, len(results))
	for i, r := range results {
		out[i] = api.SearchResult{
			DocumentId:       r.DocumentId,
			DocumentFilename: r.DocumentFilename,
			ChunkId:          r.ChunkId,
			ChunkIndex:       r.ChunkIndex,
			Content:          r.Content,
			SimilarityScore:  r.SimilarityScore,
			PageNumber:       r.PageNum,
		}
	}
	return out
}

func ToSearchResponse(query string, results []commonModels.SearchResult) api.SearchResponse {
	return api.SearchResponse{
		Query:        query,
		Results:      ToSearchResults(results),
		TotalResults: len(results),
	}
}

func ToChatResponse(message string, ans commonModels.Answer) api.ChatResponse {
	return api.ChatResponse{
		Message:        message,
		Response:       ans.AnswerText,
		ConversationId: ans.ConversationId,
		Sources:        ToSearchResults(ans.Sources),
		UsedLLM:        ans.UsedLLM,
		Cached:         ans.Cached,
		LLMError:       ans.LLMError,
	}
}

func BadRequest(traceId string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
		TraceId: traceId,
	}
}
