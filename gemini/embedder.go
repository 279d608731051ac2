// Package gemini implements embeddings and token counting with Google's
// Gemini models.
package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/dbxdocs"
	"google.golang.org/genai"
)

// Embedding defaults.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultDimensions     = 768
)

// Task types tell the model which side of a retrieval pair it is embedding.
const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var _ dbxdocs.Embedder = (*Embedder)(nil)

// Embedder implements dbxdocs.Embedder using the Gemini embedding API.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "GEMINI_API_KEY not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewEmbedder returns an Embedder for model truncated to dimensions.
// Zero values select the defaults.
func NewEmbedder(client *genai.Client, model string, dimensions int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{client: client, model: model, dimensions: int32(dimensions)}
}

// Model identifies the model and output size, since truncated vectors of
// different sizes are not comparable.
func (e *Embedder) Model() string {
	return fmt.Sprintf("%s@%d", e.model, e.dimensions)
}

// EmbedDocument embeds page text for storage.
func (e *Embedder) EmbedDocument(ctx context.Context, title, text string) ([]float32, error) {
	return e.embed(ctx, text, &genai.EmbedContentConfig{
		TaskType:             taskDocument,
		Title:                title,
		OutputDimensionality: &e.dimensions,
	})
}

// EmbedQuery embeds a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.embed(ctx, query, &genai.EmbedContentConfig{
		TaskType:             taskQuery,
		OutputDimensionality: &e.dimensions,
	})
}

func (e *Embedder) embed(ctx context.Context, text string, config *genai.EmbedContentConfig) ([]float32, error) {
	if text == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "nothing to embed")
	}

	res, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		config,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, dbxdocs.Errorf(dbxdocs.EEMBEDDING, "gemini embed: %v", err)
	}
	if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, dbxdocs.Errorf(dbxdocs.EEMBEDDING, "gemini returned no embedding")
	}
	return res.Embeddings[0].Values, nil
}
