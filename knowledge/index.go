package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// IndexConfig mirrors the teacher's SearchEngineConfig shape (DefaultTopK,
// DefaultThreshold), scoped down to the fields an embedding-free,
// in-process index can actually honour.
type IndexConfig struct {
	DefaultTopK       int
	DefaultThreshold  float64
}

func defaultIndexConfig() IndexConfig {
	return IndexConfig{DefaultTopK: 5, DefaultThreshold: 0.0}
}

// Index is a dependency-free Retriever: documents are scored against a
// query by term overlap over their content, with no embedder or vector
// store involved. It exists so the orchestration core has a working
// knowledge provider out of the box; a host that wants semantic
// retrieval replaces it with its own Retriever, not by extending this
// one.
type Index struct {
	mu      sync.RWMutex
	docs    map[string]Document
	terms   map[string][]string // docID -> lowercased content terms, cached
	cfg     IndexConfig
}

func NewIndex(cfg IndexConfig) *Index {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = defaultIndexConfig().DefaultTopK
	}
	return &Index{
		docs:  make(map[string]Document),
		terms: make(map[string][]string),
		cfg:   cfg,
	}
}

// Upsert adds or replaces a document by ID.
func (x *Index) Upsert(doc Document) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[doc.ID] = doc
	x.terms[doc.ID] = terms(doc.Content + " " + doc.Source)
}

// Delete removes a document by ID. Deleting an unknown ID is a no-op.
func (x *Index) Delete(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	delete(x.terms, id)
}

// Clear removes every document.
func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs = make(map[string]Document)
	x.terms = make(map[string][]string)
}

// Len reports how many documents are indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// Retrieve scores every document by query-term overlap and returns the
// top-K above the configured threshold, highest score first. Ties
// break by document ID for deterministic output.
func (x *Index) Retrieve(ctx context.Context, query string, topK int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = x.cfg.DefaultTopK
	}

	qTerms := terms(query)

	x.mu.RLock()
	results := make([]Result, 0, len(x.docs))
	for id, doc := range x.docs {
		score := overlapScore(qTerms, x.terms[id])
		if score < x.cfg.DefaultThreshold {
			continue
		}
		results = append(results, Result{Document: doc, Score: score})
	}
	x.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func overlapScore(queryTerms, docTerms []string) float64 {
	if len(queryTerms) == 0 || len(docTerms) == 0 {
		return 0
	}
	docSet := make(map[string]int, len(docTerms))
	for _, t := range docTerms {
		docSet[t]++
	}
	var matched float64
	for _, t := range queryTerms {
		if docSet[t] > 0 {
			matched++
		}
	}
	return matched / float64(len(queryTerms))
}

func terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
