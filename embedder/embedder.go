package embedder

import (
	"context"
	"errors"
)

// Intent tells the model how the vector will be used. Both intents must land
// in the same vector space.
type Intent int

const (
	IntentDocument Intent = iota
	IntentQuery
)

func (i Intent) String() string {
	switch i {
	case IntentDocument:
		return "document"
	case IntentQuery:
		return "query"
	default:
		return "unknown"
	}
}

var ErrEmptyInput = errors.New("embedder: input text is empty")

type Embedder interface {
	Embed(ctx context.Context, text string, intent Intent) ([]float32, error)
	Dimension() int
	Close() error
}
