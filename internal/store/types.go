// Package store owns the in-memory document corpus and its term statistics,
// and ranks documents against queries with TF-IDF cosine similarity.
package store

// Metadata describes where a document came from.
type Metadata struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Ext  string `json:"ext"`
}

// Document is an immutable entry in the corpus.
type Document struct {
	ID        int
	Text      string
	TermFreqs map[string]int
	Meta      Metadata
}

// Vector is a sparse term -> weight mapping.
type Vector map[string]float64

// Hit is a scored search result.
type Hit struct {
	Doc   *Document
	Score float64
}

// Stats summarizes corpus state.
type Stats struct {
	Documents  int    `json:"documents"`
	Terms      int    `json:"terms"`
	Generation uint64 `json:"generation"`
}

// Options configures an Index.
type Options struct {
	// SplitIdentifiers enables identifier splitting in the analyzer.
	SplitIdentifiers bool

	// VectorCacheSize bounds the per-document tf-idf vector cache (0 = default).
	VectorCacheSize int
}

// DefaultVectorCacheSize is the per-document vector cache size used when none is configured.
const DefaultVectorCacheSize = 4096
