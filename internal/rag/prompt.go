package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

func buildContext(results []commonModels.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Document: %s\nContent: %s", r.DocumentFilename, r.Content)
	}
	return strings.Join(blocks, "\n\n")
}

func buildPrompt(question string, results []commonModels.SearchResult, history []commonModels.ConversationTurn) string {
	var b strings.Builder
	b.WriteString("Use the following context to answer the question. If the context doesn't contain relevant information, say so.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(buildContext(results))
	b.WriteString("\n\n")
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "Question: %s\nAnswer: %s\n", turn.Question, turn.Answer)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer based on the context provided:", question)
	return b.String()
}

// contextOnlyAnswer is returned when no completion service is configured or it failed.
func contextOnlyAnswer(question string, results []commonModels.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find relevant information in the uploaded documents to answer your question: %q\n\n"+
			"You may need to:\n"+
			"1. Upload more documents that contain relevant information\n"+
			"2. Try rephrasing your question\n"+
			"3. Lower the similarity threshold in the RAG parameters", question)
	}
	return fmt.Sprintf("Based on the uploaded documents, I found %d relevant pieces of information:\n\n%s\n\n"+
		"This information is related to your question about: %q", len(results), buildContext(results), question)
}
