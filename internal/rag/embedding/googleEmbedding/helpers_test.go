package googleEmbedding

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetContent(t *testing.T) {
	contents := getContent([]string{"a", "b"})
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[1].Parts[0].Text != "b" {
		t.Fatalf("unexpected text %q", contents[1].Parts[0].Text)
	}
}

func TestDoRetry(t *testing.T) {
	log := logger_i.NewLogger("test")
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"grpc other", status.Error(codes.Internal, "boom"), false},
		{"http 429", fmt.Errorf("wrapped: %w", genai.APIError{Code: 429}), true},
		{"http 500", genai.APIError{Code: 500}, false},
		{"plain", errors.New("nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doRetry(tt.err, log); got != tt.want {
				t.Fatalf("doRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToVectorsNormalizes(t *testing.T) {
	res := &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{3, 4}}}}
	out := toVectors(res)
	if len(out) != 1 || math.Abs(float64(out[0][0])-0.6) > 1e-6 || math.Abs(float64(out[0][1])-0.8) > 1e-6 {
		t.Fatalf("unexpected vectors %v", out)
	}
}
