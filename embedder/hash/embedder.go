// Package hash is a deterministic, offline embedder. Each lower-cased word
// token is hashed into a bucket of the vector (feature hashing) and the
// result is L2 normalised, so texts sharing words have positive cosine
// similarity. It needs no credentials and suits local runs and tests.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/w-h-a/rag/embedder"
)

type hashEmbedder struct {
	options embedder.Options
}

func (e *hashEmbedder) Embed(ctx context.Context, text string, _ embedder.Intent) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, embedder.ErrEmptyInput
	}

	vec := make([]float32, e.options.Dimension)

	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		idx := int(sum % uint64(len(vec)))

		// the top bit picks the sign to spread collisions
		if sum>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}

	if norm == 0 {
		return vec, nil
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}

func (e *hashEmbedder) Dimension() int {
	return e.options.Dimension
}

func (e *hashEmbedder) Close() error {
	return nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return fields
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if options.Dimension <= 0 {
		panic("missing dimension for hash embedder")
	}

	return &hashEmbedder{
		options: options,
	}
}
