package index

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/dbxdocs"
)

// DefaultHashDimensions is the vector size of a HashEmbedder.
const DefaultHashDimensions = 512

var _ dbxdocs.Embedder = (*HashEmbedder)(nil)

// HashEmbedder is an offline Embedder based on feature hashing of word
// unigrams and bigrams. It needs no network access, which makes it useful
// for tests and air-gapped indexing, but it only captures lexical overlap.
type HashEmbedder struct {
	Dimensions int
}

// NewHashEmbedder returns a HashEmbedder producing vectors of dims length.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashEmbedder{Dimensions: dims}
}

// Model identifies the hashing scheme and vector size.
func (e *HashEmbedder) Model() string {
	return fmt.Sprintf("hash-v1-%d", e.dims())
}

// EmbedDocument embeds title and text. The title is counted twice.
func (e *HashEmbedder) EmbedDocument(ctx context.Context, title, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(title + "\n" + title + "\n" + text), nil
}

// EmbedQuery embeds a search query.
func (e *HashEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(query), nil
}

func (e *HashEmbedder) dims() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return DefaultHashDimensions
}

func (e *HashEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dims())

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for i, tok := range tokens {
		e.add(v, tok, 1)
		if i > 0 {
			e.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// add hashes feature into v. The top bit of the hash picks the sign so
// collisions cancel out on average.
func (e *HashEmbedder) add(v []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(len(v))
	if h>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}
