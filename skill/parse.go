package skill

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var frontmatterDelim = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)

// splitFrontmatter separates a leading YAML frontmatter block (delimited
// by --- lines) from the markdown body. Files without frontmatter are
// accepted: the whole file is the body, and fm is nil.
func splitFrontmatter(raw string) (fm *Frontmatter, body string, err error) {
	m := frontmatterDelim.FindStringSubmatch(raw)
	if m == nil {
		return nil, raw, nil
	}
	var parsed Frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &parsed); err != nil {
		return nil, raw, err
	}
	return &parsed, raw[len(m[0]):], nil
}

// normaliseName lower-cases and hyphenates a skill's display name into
// the stable component of its id.
func normaliseName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// hashID computes the skill id: {normalised-name}-{first 12 hex chars of
// the raw file's SHA-256}. Any content edit changes the hash half of the
// id even when the name stays the same.
func hashID(name string, raw []byte) string {
	sum := sha256.Sum256(raw)
	return normaliseName(name) + "-" + hex.EncodeToString(sum[:])[:12]
}

// Parse turns a raw skill file's bytes into a ParsedSkill. path is used
// only to derive a filename-stem fallback name for frontmatter-less
// files; it is not stored verbatim on the result.
func Parse(raw []byte, path string, tier Tier) (*ParsedSkill, error) {
	fm, body, err := splitFrontmatter(string(raw))
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	description := ""
	var tags []string
	version := ""
	priority := defaultPriorityFor(tier)
	var phases []Phase = []Phase{PhaseAlways}
	var detect *DetectRules
	userInvocable := false
	var allowedTools []string
	license := ""
	metadata := map[string]string{}

	if fm != nil {
		if fm.Name != "" {
			name = fm.Name
		}
		description = fm.Description
		tags = fm.Tags
		version = fm.Version
		if fm.Priority != nil {
			priority = *fm.Priority
		}
		phases = phasesFrom(fm.InjectInto)
		detect = fm.Detect
		userInvocable = fm.UserInvocable
		allowedTools = fm.AllowedTools
		license = fm.License
		if fm.Metadata != nil {
			metadata = fm.Metadata
		}
	}

	if err := validateMarkdown(body); err != nil {
		return nil, err
	}

	return &ParsedSkill{
		ID:            hashID(name, raw),
		Name:          name,
		Description:   description,
		Version:       version,
		Tags:          tags,
		Body:          strings.TrimSpace(body),
		Tier:          tier,
		Priority:      priority,
		Phases:        phases,
		Detect:        detect,
		Enabled:       true,
		SourcePath:    path,
		UserInvocable: userInvocable,
		AllowedTools:  allowedTools,
		License:       license,
		Metadata:      metadata,
	}, nil
}

// validateMarkdown confirms the body parses as CommonMark at all, purely
// as a sanity check — goldmark's parser does not reject malformed input
// (markdown has no real notion of "invalid"), so this always returns nil
// and never rejects a body.
func validateMarkdown(body string) error {
	md := goldmark.New()
	_ = md.Parser().Parse(text.NewReader([]byte(body)))
	return nil
}

// ClampLines truncates a skill's body to at most maxLines lines, never
// cutting inside a fenced code block (``` ... ```) — it extends the cut
// to the fence's closing line instead of splitting it. If maxLines is
// <= 0 or the body already fits, the body is returned unchanged.
func ClampLines(body string, maxLines int) (string, bool) {
	if maxLines <= 0 {
		return body, false
	}
	lines := strings.Split(body, "\n")
	if len(lines) <= maxLines {
		return body, false
	}

	cut := maxLines
	inFence := false
	for i := 0; i < cut; i++ {
		if isFenceLine(lines[i]) {
			inFence = !inFence
		}
	}
	for inFence && cut < len(lines) {
		if isFenceLine(lines[cut]) {
			inFence = false
			cut++
			break
		}
		cut++
	}

	return strings.Join(lines[:cut], "\n"), true
}

func isFenceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
