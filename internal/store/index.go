package store

import (
	"fmt"
	"math"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedVector is a document's tf-idf vector together with the generation it was computed in.
type cachedVector struct {
	generation uint64
	vector     Vector
	magnitude  float64
}

// Index is the ranking index: an append-only corpus with document frequencies
// and TF-IDF cosine search.
//
// Every insertion bumps the generation counter. The idf cache and the per-document
// vector cache are only trusted for the generation they were filled in, so a new
// mutation path cannot forget to invalidate them.
type Index struct {
	mu         sync.RWMutex
	analyzer   Analyzer
	docs       []*Document
	docFreq    map[string]int
	generation uint64

	cacheMu  sync.Mutex
	idfGen   uint64
	idfCache map[string]float64

	vectors *lru.Cache[int, cachedVector]
}

// NewIndex creates an empty index.
func NewIndex(opts Options) (*Index, error) {
	size := opts.VectorCacheSize
	if size <= 0 {
		size = DefaultVectorCacheSize
	}
	vectors, err := lru.New[int, cachedVector](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector cache: %w", err)
	}
	return &Index{
		analyzer: Analyzer{SplitIdentifiers: opts.SplitIdentifiers},
		docFreq:  make(map[string]int),
		idfCache: make(map[string]float64),
		vectors:  vectors,
	}, nil
}

// Add appends a document and returns its id. Ids start at 1 and are never reused.
func (ix *Index) Add(text string, meta Metadata) int {
	tf := TermFrequencies(ix.analyzer.Terms(text))

	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc := &Document{
		ID:        len(ix.docs) + 1,
		Text:      text,
		TermFreqs: tf,
		Meta:      meta,
	}
	ix.docs = append(ix.docs, doc)
	for term := range tf {
		ix.docFreq[term]++
	}
	ix.generation++

	return doc.ID
}

// Len returns the number of documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Generation returns the mutation counter.
func (ix *Index) Generation() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.generation
}

// Document returns the document with the given id.
func (ix *Index) Document(id int) (*Document, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if id < 1 || id > len(ix.docs) {
		return nil, false
	}
	return ix.docs[id-1], true
}

// DocFreq returns the number of documents containing term.
func (ix *Index) DocFreq(term string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docFreq[term]
}

// Stats returns a snapshot of corpus counters.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		Documents:  len(ix.docs),
		Terms:      len(ix.docFreq),
		Generation: ix.generation,
	}
}

// IDF returns ln(N/df) for term, or 0 when the term is absent or the corpus is empty.
func (ix *Index) IDF(term string) float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.idfLocked(term)
}

// idfLocked requires ix.mu to be held.
func (ix *Index) idfLocked(term string) float64 {
	ix.cacheMu.Lock()
	defer ix.cacheMu.Unlock()

	if ix.idfGen != ix.generation {
		ix.idfCache = make(map[string]float64, len(ix.idfCache))
		ix.idfGen = ix.generation
	}
	if v, ok := ix.idfCache[term]; ok {
		return v
	}

	var idf float64
	if n, df := len(ix.docs), ix.docFreq[term]; n > 0 && df > 0 {
		idf = math.Log(float64(n) / float64(df))
	}
	ix.idfCache[term] = idf
	return idf
}

// TFIDF weights each term frequency by the term's current idf.
func (ix *Index) TFIDF(tf map[string]int) Vector {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tfidfLocked(tf)
}

func (ix *Index) tfidfLocked(tf map[string]int) Vector {
	vec := make(Vector, len(tf))
	for term, freq := range tf {
		vec[term] = float64(freq) * ix.idfLocked(term)
	}
	return vec
}

// docVectorLocked returns doc's tf-idf vector for the current generation.
func (ix *Index) docVectorLocked(doc *Document) (Vector, float64) {
	if c, ok := ix.vectors.Get(doc.ID); ok && c.generation == ix.generation {
		return c.vector, c.magnitude
	}
	vec := ix.tfidfLocked(doc.TermFreqs)
	mag := Magnitude(vec)
	ix.vectors.Add(doc.ID, cachedVector{generation: ix.generation, vector: vec, magnitude: mag})
	return vec, mag
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v Vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b, or 0 if either has zero magnitude.
func Cosine(a, b Vector) float64 {
	return cosine(a, Magnitude(a), b, Magnitude(b))
}

func cosine(a Vector, magA float64, b Vector, magB float64) float64 {
	if magA == 0 || magB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot / (magA * magB)
}

// Search ranks every document against query and returns at most k hits with score > 0,
// ordered by score descending and then by ascending document id.
func (ix *Index) Search(query string, k int) []Hit {
	if k <= 0 {
		return []Hit{}
	}

	queryTF := TermFrequencies(ix.analyzer.Terms(query))

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.docs) == 0 {
		return []Hit{}
	}

	queryVec := ix.tfidfLocked(queryTF)
	queryMag := Magnitude(queryVec)
	if queryMag == 0 {
		return []Hit{}
	}

	hits := make([]Hit, 0)
	for _, doc := range ix.docs {
		docVec, docMag := ix.docVectorLocked(doc)
		score := cosine(queryVec, queryMag, docVec, docMag)
		if score > 0 {
			hits = append(hits, Hit{Doc: doc, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Doc.ID < hits[j].Doc.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
