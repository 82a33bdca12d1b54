package llm

import "context"

// Provider is a text completion service. prompt already carries the retrieved context, history
// and question; the provider adds its own system instruction.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
