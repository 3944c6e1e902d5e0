package skill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FrontmatterLessFileUsesFilenameStem(t *testing.T) {
	s, err := Parse([]byte("# Hello\n\nsome body\n"), "/tmp/my-skill.md", TierProjectLocal)
	require.NoError(t, err)
	assert.Equal(t, "my-skill", s.Name)
	assert.Contains(t, s.Body, "some body")
}

func TestParse_FrontmatterFieldsAreExtracted(t *testing.T) {
	raw := "---\nname: My Skill\ndescription: does a thing\ntags: [a, b]\npriority: 42\ninject_into: [planning, retry]\n---\nbody text\n"
	s, err := Parse([]byte(raw), "/tmp/whatever.md", TierExternal)
	require.NoError(t, err)
	assert.Equal(t, "My Skill", s.Name)
	assert.Equal(t, "does a thing", s.Description)
	assert.Equal(t, []string{"a", "b"}, s.Tags)
	assert.Equal(t, 42, s.Priority)
	assert.Equal(t, []Phase{PhasePlanning, PhaseRetry}, s.Phases)
	assert.Equal(t, "body text", s.Body)
}

func TestParse_IdChangesWithContentNotName(t *testing.T) {
	a, err := Parse([]byte("---\nname: X\n---\nbody one"), "x.md", TierUser)
	require.NoError(t, err)
	b, err := Parse([]byte("---\nname: X\n---\nbody two"), "x.md", TierUser)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.ID, "x-"))
	assert.True(t, strings.HasPrefix(b.ID, "x-"))
}

func TestParse_IdStableAcrossRepeatedParsesOfSameContent(t *testing.T) {
	raw := []byte("---\nname: Stable\n---\nsame body")
	a, err := Parse(raw, "s.md", TierBuiltin)
	require.NoError(t, err)
	b, err := Parse(raw, "s.md", TierBuiltin)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func TestClampLines_NoOpWhenUnderLimit(t *testing.T) {
	body := "line1\nline2\nline3"
	out, clamped := ClampLines(body, 10)
	assert.False(t, clamped)
	assert.Equal(t, body, out)
}

func TestClampLines_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("para\n\n", 50)
	out, clamped := ClampLines(body, 5)
	assert.True(t, clamped)
	assert.LessOrEqual(t, len(strings.Split(out, "\n")), 6)
}

func TestIndex_MergeKeepsHigherPrioritySource(t *testing.T) {
	idx := NewIndex()
	low, _ := Parse([]byte("---\nname: Dup\npriority: 201\n---\nproject version"), "a.md", TierProjectLocal)
	high, _ := Parse([]byte("---\nname: Dup\npriority: 10\n---\nbuiltin version"), "b.md", TierBuiltin)

	idx.Merge(low)
	idx.Merge(high)

	all := idx.All()
	require.Len(t, all, 1)
	assert.Equal(t, "builtin version", all[0].Body)
}

func TestIndex_MergeIgnoresLowerPriorityArrivingSecond(t *testing.T) {
	idx := NewIndex()
	high, _ := Parse([]byte("---\nname: Dup\npriority: 10\n---\nbuiltin version"), "b.md", TierBuiltin)
	low, _ := Parse([]byte("---\nname: Dup\npriority: 201\n---\nproject version"), "a.md", TierProjectLocal)

	idx.Merge(high)
	idx.Merge(low)

	all := idx.All()
	require.Len(t, all, 1)
	assert.Equal(t, "builtin version", all[0].Body)
}

type fakeFiles struct {
	globs   map[string][]string
	content map[string]string
}

func (f *fakeFiles) Glob(pattern string) ([]string, error) { return f.globs[pattern], nil }
func (f *fakeFiles) ReadFile(path string) (string, error)  { return f.content[path], nil }

func TestSelect_DetectionMatchBoostsScore(t *testing.T) {
	idx := NewIndex()
	detected, _ := Parse([]byte("---\nname: Go Skill\ndetect:\n  files: [\"*.go\"]\n  patterns: [\"package main\"]\n---\nbody"), "go.md", TierBuiltin)
	undetected, _ := Parse([]byte("---\nname: Other Skill\n---\nbody"), "other.md", TierBuiltin)
	idx.MergeAll([]*ParsedSkill{detected, undetected})

	files := &fakeFiles{
		globs:   map[string][]string{"*.go": {"main.go"}},
		content: map[string]string{"main.go": "package main\n"},
	}

	selected := Select(idx, PhaseAlways, "", files, Policy{TopK: 10})
	require.Len(t, selected, 2)
	assert.Equal(t, "Go Skill", selected[0].Skill.Name)
}

func TestSelect_ForcedPickBypassesScoring(t *testing.T) {
	idx := NewIndex()
	s, _ := Parse([]byte("---\nname: Irrelevant\n---\nbody"), "i.md", TierBuiltin)
	idx.Merge(s)

	selected := Select(idx, PhaseAlways, "nothing matching at all", nil, Policy{TopK: 10, MinScore: 0.5, ForcedIDs: []string{s.ID}})
	require.Len(t, selected, 1)
	assert.Equal(t, s.ID, selected[0].Skill.ID)
}

func TestSelect_RespectsTopK(t *testing.T) {
	idx := NewIndex()
	for i := 0; i < 5; i++ {
		s, _ := Parse([]byte("---\nname: S"+string(rune('A'+i))+"\n---\nbody"), "s.md", TierBuiltin)
		idx.Merge(s)
	}
	selected := Select(idx, PhaseAlways, "", nil, Policy{TopK: 2})
	assert.Len(t, selected, 2)
}

func TestSelect_PhaseFiltering(t *testing.T) {
	idx := NewIndex()
	planning, _ := Parse([]byte("---\nname: Plan\ninject_into: [planning]\n---\nbody"), "p.md", TierBuiltin)
	idx.Merge(planning)

	assert.Len(t, Select(idx, PhasePlanning, "", nil, Policy{TopK: 10}), 1)
	assert.Len(t, Select(idx, PhaseImplementation, "", nil, Policy{TopK: 10}), 0)
}

func TestDiscoverProject_FindsSkillsDirAndConventionFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".skills"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skills", "a.md"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte("b"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".skills", "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skills", "node_modules", "ignored.md"), []byte("c"), 0o644))

	paths, err := DiscoverProject(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	for _, p := range paths {
		assert.NotContains(t, p, "node_modules")
	}
}

func TestRenderForPrompt_EmptyWhenNoSelections(t *testing.T) {
	assert.Equal(t, "", RenderForPrompt(nil))
}

func TestRenderForPrompt_IncludesHeadingAndBodies(t *testing.T) {
	s, _ := Parse([]byte("---\nname: X\n---\nbody text"), "x.md", TierBuiltin)
	out := RenderForPrompt([]Selected{{Skill: s, Body: s.Body}})
	assert.Contains(t, out, "Relevant Skills")
	assert.Contains(t, out, "body text")
}
