// Package skill discovers, parses, indexes, and selects markdown
// "skills" — knowledge units injected into an agent's system prompt at
// specific phases of a run.
package skill

// Tier is where a skill came from. Merge does not compare tiers; a tier
// only supplies a skill's default Priority when its frontmatter sets none.
type Tier string

const (
	TierBuiltin      Tier = "builtin"
	TierExternal     Tier = "external"
	TierUser         Tier = "user"
	TierProjectLocal Tier = "project_local"
	TierGenerated    Tier = "generated"
)

// Phase is when a skill is eligible for injection.
type Phase string

const (
	PhasePlanning       Phase = "planning"
	PhaseImplementation Phase = "implementation"
	PhaseRetry          Phase = "retry"
	PhaseAlways         Phase = "always"
)

// DetectRules let a skill auto-select itself when the project matches:
// at least one Files glob must match a project path, and, when Patterns
// is non-empty, at least one Patterns regex must match that matched
// file's content.
type DetectRules struct {
	Files    []string `yaml:"files"`
	Patterns []string `yaml:"patterns"`
}

// Frontmatter is the optional YAML block at the top of a skill file.
type Frontmatter struct {
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	Version        string            `yaml:"version"`
	Tags           []string          `yaml:"tags"`
	UserInvocable  bool              `yaml:"user_invocable"`
	AllowedTools   []string          `yaml:"allowed_tools"`
	License        string            `yaml:"license"`
	InjectInto     []string          `yaml:"inject_into"`
	Priority       *int              `yaml:"priority"`
	PreToolHooks   []string          `yaml:"pre_tool_hooks"`
	PostToolHooks  []string          `yaml:"post_tool_hooks"`
	Detect         *DetectRules      `yaml:"detect"`
	Metadata       map[string]string `yaml:"metadata"`
}

// ParsedSkill is a skill file after frontmatter extraction and id
// assignment. Id is stable across re-parses of unchanged content only:
// it is a hash of the raw file bytes, so any content edit yields a new
// id even if the name is unchanged.
type ParsedSkill struct {
	ID          string
	Name        string
	Description string
	Version     string
	Tags        []string
	Body        string
	Tier        Tier
	Priority    int
	Phases      []Phase
	Detect      *DetectRules
	Enabled     bool
	SourcePath  string

	UserInvocable bool
	AllowedTools  []string
	License       string
	Metadata      map[string]string
}

func defaultPriorityFor(tier Tier) int {
	switch tier {
	case TierBuiltin:
		return 25
	case TierExternal:
		return 75
	case TierUser:
		return 150
	case TierProjectLocal:
		return 201
	default:
		return 201
	}
}

func phasesFrom(injectInto []string) []Phase {
	if len(injectInto) == 0 {
		return []Phase{PhaseAlways}
	}
	phases := make([]Phase, 0, len(injectInto))
	for _, p := range injectInto {
		phases = append(phases, Phase(p))
	}
	return phases
}
