package skill

import "sort"

// Index holds merged skills keyed by id, with a normalised-name lookup
// for the merge-by-name-wins-on-priority rule.
type Index struct {
	byID     map[string]*ParsedSkill
	byName   map[string]*ParsedSkill
}

func NewIndex() *Index {
	return &Index{byID: make(map[string]*ParsedSkill), byName: make(map[string]*ParsedSkill)}
}

// Merge adds a skill to the index. If another skill with the same
// normalised name already exists, the higher-priority one wins — lower
// numeric priority wins, matching the tiering where Builtin (1-50) is
// more authoritative than ProjectLocal (201+).
func (idx *Index) Merge(s *ParsedSkill) {
	key := normaliseName(s.Name)
	if existing, ok := idx.byName[key]; ok {
		if existing.Priority <= s.Priority {
			return
		}
		delete(idx.byID, existing.ID)
	}
	idx.byName[key] = s
	idx.byID[s.ID] = s
}

func (idx *Index) MergeAll(skills []*ParsedSkill) {
	for _, s := range skills {
		idx.Merge(s)
	}
}

func (idx *Index) Get(id string) (*ParsedSkill, bool) {
	s, ok := idx.byID[id]
	return s, ok
}

// All returns every indexed skill, sorted by id for deterministic
// iteration.
func (idx *Index) All() []*ParsedSkill {
	out := make([]*ParsedSkill, 0, len(idx.byID))
	for _, s := range idx.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
