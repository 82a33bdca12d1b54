package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

// Embedder turns text into L2-normalized vectors of a fixed dimension.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// Normalize scales v to unit length in place. The zero vector is left as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) / n)
	}
	return v
}

// Float64To32 converts and normalizes a provider vector.
func Float64To32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return Normalize(out)
}

// CheckVectors fails when a provider returned the wrong number of vectors or a vector of
// the wrong length.
func CheckVectors(vectors [][]float32, want, dimension int) error {
	if len(vectors) != want {
		return fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), want)
	}
	for _, v := range vectors {
		if len(v) != dimension {
			return commonModels.DimensionError(dimension, len(v))
		}
	}
	return nil
}

// InBatches calls fn for consecutive slices of at most size texts and concatenates the results.
func InBatches(ctx context.Context, texts []string, size int, fn func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+size, len(texts))
		vecs, err := fn(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}
