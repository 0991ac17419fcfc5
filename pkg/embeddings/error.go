package embeddings

import "errors"

// ErrEmbedding is returned when an embedder fails to produce a vector.
var ErrEmbedding = errors.New("embedding error")
