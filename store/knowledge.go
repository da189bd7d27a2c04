package store

import "errors"

// ErrVectorSearchUnsupported is returned by drivers that cannot serve
// similarity queries. Callers fall back to keyword search.
var ErrVectorSearchUnsupported = errors.New("vector search is not supported by this driver")

// KnowledgeRecord is a cached encyclopedic summary keyed by topic.
type KnowledgeRecord struct {
	ID        int32
	Topic     string
	Content   string
	SourceURL string
	Lang      string
	CreatedTs int64
}

type FindKnowledgeRecord struct {
	ID *int32
	// Query matches records whose topic contains the given text,
	// case folding applied by the caller.
	Query *string
	Limit *int
}

type KnowledgeEmbedding struct {
	ID          int32
	KnowledgeID int32
	Embedding   []float32
	Model       string
	CreatedTs   int64
}
