// Package knowledge provides relevance-ranked retrieval of project and
// session knowledge into an agent's system prompt. It defines the
// narrow Retriever boundary the orchestration core consumes; a host
// wires a concrete implementation (an in-process index, a vector
// database client, a documentation search API) behind that boundary.
// The package ships one dependency-free implementation, Index, usable
// without any external infrastructure.
package knowledge

import (
	"context"
	"errors"
	"strings"
)

const (
	// MinQueryLength rejects queries too short to produce a meaningful
	// ranking (mirrors the teacher's rag.SearchEngine query floor).
	MinQueryLength = 2
	// MaxQueryLength caps query size so a caller can't push an
	// unbounded string through scoring.
	MaxQueryLength = 4000
)

var (
	ErrQueryTooShort = errors.New("knowledge: query too short")
	ErrQueryTooLong  = errors.New("knowledge: query too long")
)

// Document is one unit of retrievable knowledge: a file chunk, a past
// decision, a note. Source identifies where it came from for citation;
// it is not interpreted by this package.
type Document struct {
	ID       string
	Source   string
	Content  string
	Metadata map[string]string
}

// Result is one retrieved document with its relevance score in [0,1].
type Result struct {
	Document Document
	Score    float64
}

// Retriever is the boundary the orchestration core consumes. A
// vector-database-backed, embedding-based, or remote-API-backed
// implementation satisfies this with no change to any caller.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Result, error)
}

// validateQuery applies the same floor/ceiling the teacher's search
// engine applies before scoring, so a malformed query fails fast
// instead of silently scoring against every document.
func validateQuery(query string) error {
	q := strings.TrimSpace(query)
	if len(q) < MinQueryLength {
		return ErrQueryTooShort
	}
	if len(q) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}
