package skill

import (
	"regexp"
	"sort"
	"strings"
)

// Policy controls selection at one injection phase.
type Policy struct {
	TopK         int
	MinScore     float64
	IncludeTags  []string
	ExcludeTags  []string
	MaxBodyLines int
	ForcedIDs    []string // user-forced picks bypass scoring entirely
}

// ProjectFiles is the narrow surface Select needs to evaluate detection
// rules: list files matching a glob, and read one's content.
type ProjectFiles interface {
	Glob(pattern string) ([]string, error)
	ReadFile(path string) (string, error)
}

// Selected is one skill chosen for injection, with its (possibly
// line-clamped) body ready to concatenate into the prompt.
type Selected struct {
	Skill     *ParsedSkill
	Score     float64
	Clamped   bool
	Body      string
}

// Select picks the top-K skills for a phase from an index, given a user
// query for lexical scoring and a project file surface for detection
// scoring. Forced picks (by id) bypass scoring and are always included,
// counting toward TopK.
func Select(idx *Index, phase Phase, query string, files ProjectFiles, policy Policy) []Selected {
	forced := make(map[string]bool, len(policy.ForcedIDs))
	for _, id := range policy.ForcedIDs {
		forced[id] = true
	}

	var candidates []Selected
	var forcedPicks []Selected

	for _, s := range idx.All() {
		if !s.Enabled {
			continue
		}
		if !hasPhase(s.Phases, phase) {
			continue
		}
		if !tagsAllowed(s.Tags, policy.IncludeTags, policy.ExcludeTags) {
			continue
		}

		if forced[s.ID] {
			forcedPicks = append(forcedPicks, Selected{Skill: s, Score: 1.0})
			continue
		}

		score := scoreSkill(s, query, files)
		if score < policy.MinScore {
			continue
		}
		candidates = append(candidates, Selected{Skill: s, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	topK := policy.TopK
	if topK <= 0 {
		topK = len(candidates)
	}
	remaining := topK - len(forcedPicks)
	if remaining < 0 {
		remaining = 0
	}
	if remaining < len(candidates) {
		candidates = candidates[:remaining]
	}

	result := append(forcedPicks, candidates...)
	for i := range result {
		body, clamped := ClampLines(result[i].Skill.Body, policy.MaxBodyLines)
		result[i].Body = body
		result[i].Clamped = clamped
	}
	return result
}

func hasPhase(phases []Phase, target Phase) bool {
	for _, p := range phases {
		if p == target || p == PhaseAlways {
			return true
		}
	}
	return false
}

func tagsAllowed(tags, include, exclude []string) bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	for _, t := range exclude {
		if set[t] {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, t := range include {
		if set[t] {
			return true
		}
	}
	return false
}

// scoreSkill combines auto-detection (file glob + content pattern match)
// with lexical overlap between the query and the skill's name/description/
// tags. Detection match contributes a fixed weight; lexical overlap
// contributes proportionally to shared terms.
func scoreSkill(s *ParsedSkill, query string, files ProjectFiles) float64 {
	var score float64

	if s.Detect != nil && files != nil && detectionMatches(s.Detect, files) {
		score += 1.0
	}

	score += lexicalOverlap(query, s.Name+" "+s.Description+" "+strings.Join(s.Tags, " "))
	return score
}

func detectionMatches(d *DetectRules, files ProjectFiles) bool {
	if len(d.Files) == 0 {
		return false
	}
	var matchedPaths []string
	for _, glob := range d.Files {
		paths, err := files.Glob(glob)
		if err != nil {
			continue
		}
		matchedPaths = append(matchedPaths, paths...)
	}
	if len(matchedPaths) == 0 {
		return false
	}
	if len(d.Patterns) == 0 {
		return true
	}
	for _, pat := range d.Patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			continue
		}
		for _, path := range matchedPaths {
			content, err := files.ReadFile(path)
			if err != nil {
				continue
			}
			if re.MatchString(content) {
				return true
			}
		}
	}
	return false
}

func lexicalOverlap(query, text string) float64 {
	queryTerms := terms(query)
	if len(queryTerms) == 0 {
		return 0
	}
	textTerms := make(map[string]bool)
	for _, t := range terms(text) {
		textTerms[t] = true
	}
	matches := 0
	for _, t := range queryTerms {
		if textTerms[t] {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTerms))
}

func terms(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}
