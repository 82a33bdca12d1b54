package hashEmbedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
)

// Embedder is a local feature-hashing embedder. Lowercased word unigrams and bigrams are
// hashed into signed buckets, so texts sharing vocabulary land close together. It needs no
// network access and is deterministic across runs.
type Embedder struct {
	dimension int
	model     string
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

var _ embedding.Embedder = (*Embedder)(nil)

func New(dimension int, model string) *Embedder {
	if dimension <= 0 {
		dimension = config.DefaultDimension
	}
	if model == "" {
		model = config.DefaultEmbeddingModel
	}
	return &Embedder{dimension: dimension, model: model}
}

func (e *Embedder) Dimension() int    { return e.dimension }
func (e *Embedder) ModelName() string { return e.model }

func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *Embedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return embedding.Normalize(vec)
}

func (e *Embedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(e.dimension))
	// top bit picks the sign so collisions tend to cancel instead of pile up
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}
