package embedding

import "context"

// Provider contract. Implementations turn text into dense vectors; the
// qdrant adapter uses one as the store-side vectorizer attached to a
// collection.
type Provider interface {
	// CreateEmbeddings embeds one or more texts with the given model in a
	// single request. The returned slice is index-aligned with texts.
	CreateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error)
}
