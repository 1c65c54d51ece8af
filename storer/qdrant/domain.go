package qdrant

import (
	"encoding/json"
	"fmt"
)

// qdrantResponse is the body of every qdrant REST reply. Status is either
// the string "ok" or an object carrying an error message.
type qdrantResponse[T any] struct {
	Status json.RawMessage `json:"status"`
	Result T               `json:"result"`
}

func (r qdrantResponse[T]) errorMessage() string {
	var failed struct {
		Error string `json:"error"`
	}
	if len(r.Status) > 0 && r.Status[0] == '{' && json.Unmarshal(r.Status, &failed) == nil {
		return failed.Error
	}
	return ""
}

type qdrantPoint struct {
	Id      string            `json:"id"`
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

type qdrantPointResult struct {
	Id      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// qdrant point ids are either UUID strings or unsigned integers
func (r qdrantPointResult) id() string {
	switch v := r.Id.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", uint64(v))
	default:
		return fmt.Sprint(v)
	}
}

type qdrantVectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type qdrantCollectionInfo struct {
	Config struct {
		Params struct {
			// absent size means the collection uses named vectors
			Vectors qdrantVectorParams `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// qdrantError is a failed call: a non-2xx reply, or a 2xx reply whose status
// object names an error.
type qdrantError struct {
	status  int
	message string
}

func (e *qdrantError) Error() string {
	return fmt.Sprintf("qdrant http %d: %s", e.status, e.message)
}
