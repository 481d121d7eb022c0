// Package embedd serves sentence embeddings computed by a local ONNX model.
package embedd

import "context"

// Version of the library
const Version = "v0.1.0"

// Embedding is a dense vector produced by the model.
type Embedding []float32

// Encoder turns a batch of texts into one embedding per text, in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([]Embedding, error)
	Dimensions() int
	ModelName() string
}
