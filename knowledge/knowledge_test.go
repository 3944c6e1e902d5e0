package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_RetrieveRanksByTermOverlap(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	idx.Upsert(Document{ID: "a", Source: "a.md", Content: "permission gate approval flow"})
	idx.Upsert(Document{ID: "b", Source: "b.md", Content: "completely unrelated database schema notes"})

	results, err := idx.Retrieve(context.Background(), "permission approval", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a", results[0].Document.ID)
}

func TestIndex_RetrieveRejectsShortQuery(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	idx.Upsert(Document{ID: "a", Source: "a.md", Content: "x"})
	_, err := idx.Retrieve(context.Background(), "a", 5)
	assert.ErrorIs(t, err, ErrQueryTooShort)
}

func TestIndex_RetrieveRespectsTopK(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	for i := 0; i < 5; i++ {
		idx.Upsert(Document{ID: string(rune('a' + i)), Source: "s", Content: "shared matching term"})
	}
	results, err := idx.Retrieve(context.Background(), "shared matching term", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestIndex_DeleteRemovesFromResults(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	idx.Upsert(Document{ID: "a", Source: "a.md", Content: "shared term here"})
	idx.Delete("a")
	results, err := idx.Retrieve(context.Background(), "shared term", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_ClearRemovesEverything(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	idx.Upsert(Document{ID: "a", Source: "a.md", Content: "shared term here"})
	idx.Clear()
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_RetrieveRespectsContextCancellation(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	idx.Upsert(Document{ID: "a", Source: "a.md", Content: "shared term here"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := idx.Retrieve(ctx, "shared term", 5)
	assert.Error(t, err)
}

func TestBuildContext_RendersAboveMinScore(t *testing.T) {
	idx := NewIndex(IndexConfig{})
	idx.Upsert(Document{ID: "a", Source: "a.md", Content: "permission gate approval flow"})
	idx.Upsert(Document{ID: "b", Source: "b.md", Content: "totally different content about nothing relevant"})

	out, err := BuildContext(context.Background(), idx, "permission approval", ContextConfig{TopK: 5, MinScore: 0.3})
	require.NoError(t, err)
	assert.Contains(t, out, "Knowledge Context")
	assert.Contains(t, out, "a.md")
	assert.NotContains(t, out, "b.md")
}

func TestRenderForPrompt_EmptyWhenNoResults(t *testing.T) {
	assert.Equal(t, "", RenderForPrompt(nil, 0))
}

func TestRenderForPrompt_NotesOmittedResultsWhenOverBudget(t *testing.T) {
	results := []Result{
		{Document: Document{ID: "a", Source: "a.md", Content: "short"}},
		{Document: Document{ID: "b", Source: "b.md", Content: "also short"}},
	}
	out := RenderForPrompt(results, 40)
	assert.Contains(t, out, "omitted for length")
}

func TestRenderForPrompt_IncludesAllWithinBudget(t *testing.T) {
	results := []Result{
		{Document: Document{ID: "a", Source: "a.md", Content: "short content"}},
	}
	out := RenderForPrompt(results, 0)
	assert.Contains(t, out, "a.md")
	assert.Contains(t, out, "short content")
	assert.NotContains(t, out, "omitted")
}
