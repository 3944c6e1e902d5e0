package skill

import "strings"

// RenderForPrompt concatenates the selected skills' (already-clamped)
// bodies under a "Relevant Skills" heading, ready to fold into a system
// prompt.
func RenderForPrompt(selected []Selected) string {
	if len(selected) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Relevant Skills\n\n")
	for _, sel := range selected {
		b.WriteString("### ")
		b.WriteString(sel.Skill.Name)
		b.WriteString("\n\n")
		b.WriteString(sel.Body)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// GeneratedSkillRecord is a post-session-generated skill as stored in the
// generated-skills table, keyed by project path.
type GeneratedSkillRecord struct {
	ProjectPath string
	Skill       ParsedSkill
	UsageCount  int
	Enabled     bool
}

// GeneratedSkillStore is the persistence boundary for generated skills —
// deliberately out of scope for this package's own implementation (spec
// Non-goals exclude database schemas); a host wires a concrete store (SQL,
// embedded KV, whatever its own persistence stack already uses) behind
// this interface. Enabled generated skills participate in Select via
// LoadEnabled feeding into an Index the same way any other source does.
type GeneratedSkillStore interface {
	LoadEnabled(projectPath string) ([]*ParsedSkill, error)
	RecordUsage(projectPath, skillID string) error
	SetEnabled(projectPath, skillID string, enabled bool) error
}
