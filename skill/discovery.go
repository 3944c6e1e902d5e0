package skill

import (
	"os"
	"path/filepath"
	"strings"
)

// ConventionFiles are root-level files treated as implicit, unparsed-
// frontmatter skills (whole file is the body) when present.
var ConventionFiles = []string{
	"CLAUDE.md", "AGENTS.md", "AGENT.md", "SKILLS.md", "COPILOT.md", "GEMINI.md", "SOUL.md",
}

// IgnoredDirs are skipped during the recursive .skills/ walk.
var IgnoredDirs = map[string]bool{
	".git": true, "target": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, ".venv": true,
}

// Source is one location to discover skills from, paired with the tier
// its skills should be tagged with.
type Source struct {
	Root string
	Tier Tier
}

// DiscoverProject walks projectRoot's .skills/ directory recursively for
// .md files, plus the fixed convention files at the project root,
// tagging everything found as TierProjectLocal.
func DiscoverProject(projectRoot string) ([]string, error) {
	var paths []string

	skillsDir := filepath.Join(projectRoot, ".skills")
	if info, err := os.Stat(skillsDir); err == nil && info.IsDir() {
		err := filepath.WalkDir(skillsDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if IgnoredDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".md") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, name := range ConventionFiles {
		p := filepath.Join(projectRoot, name)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}

	return paths, nil
}

// DiscoverFlat lists the top-level .md files directly under root,
// non-recursively — the shape external/user/builtin skill sources use
// (a flat directory of skill files, not a project tree to walk).
func DiscoverFlat(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			paths = append(paths, filepath.Join(root, e.Name()))
		}
	}
	return paths, nil
}

// DiscoverAndParse runs DiscoverProject plus any extra flat Sources
// (external/user/builtin), parsing every file found.
func DiscoverAndParse(projectRoot string, extra []Source) ([]*ParsedSkill, error) {
	var skills []*ParsedSkill

	projectPaths, err := DiscoverProject(projectRoot)
	if err != nil {
		return nil, err
	}
	for _, p := range projectPaths {
		s, err := parseFile(p, TierProjectLocal)
		if err != nil {
			continue
		}
		skills = append(skills, s)
	}

	for _, src := range extra {
		paths, err := DiscoverFlat(src.Root)
		if err != nil {
			continue
		}
		for _, p := range paths {
			s, err := parseFile(p, src.Tier)
			if err != nil {
				continue
			}
			skills = append(skills, s)
		}
	}

	return skills, nil
}

func parseFile(path string, tier Tier) (*ParsedSkill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw, path, tier)
}
