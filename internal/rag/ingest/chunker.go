package ingest

import (
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
)

type TextChunk struct {
	Content    string `json:"content"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
	ChunkIndex int    `json:"chunk_index"`
	// StartWord is the index of the chunk's first word in strings.Fields(text)
	StartWord  int    `json:"start_word"`
}

// ChunkText splits text into overlapping windows of chunkSize words.
// Offsets are rebuilt from single-space joins, so they drift when the source
// has runs of whitespace or non-space separators.
func ChunkText(text string, chunkSize int, overlap int) []TextChunk {
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSizeWords
	}
	if overlap < 0 {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []TextChunk{}
	}

	if len(words) <= chunkSize {
		return []TextChunk{{
			Content:    text,
			StartChar:  0,
			EndChar:    len(text),
			ChunkIndex: 0,
		}}
	}

	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}

	// prefix[i] is len(strings.Join(words[:i], " "))
	prefix := make([]int, len(words)+1)
	for i, w := range words {
		prefix[i+1] = prefix[i] + len(w)
		if i > 0 {
			prefix[i+1]++
		}
	}

	var chunks []TextChunk
	for start := 0; start < len(words); start += step {
		end := min(start+chunkSize, len(words))
		content := strings.Join(words[start:end], " ")

		startChar := prefix[start]
		if start > 0 {
			startChar++
		}
		endChar := startChar + len(content)
		if endChar > len(text) {
			endChar = len(text)
		}
		if startChar >= endChar {
			startChar = max(endChar-1, 0)
		}

		chunks = append(chunks, TextChunk{
			Content:    content,
			StartChar:  startChar,
			EndChar:    endChar,
			ChunkIndex: len(chunks),
			StartWord:  start,
		})

		if end >= len(words) {
			break
		}
	}
	return chunks
}
