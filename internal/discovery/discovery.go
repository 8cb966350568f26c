// Package discovery scans the canonical skill library and produces the
// per-skill inputs the sync engine consumes: stable skill ids, preferred
// names, and canonical directory paths.
package discovery

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/manifest"
	"github.com/klauern/skillmirror/internal/model"
)

// frontMatter is the subset of SKILL.md front matter discovery cares about.
type frontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Scan returns every skill in the library, sorted by name. A skill is an
// immediate subdirectory of the library root containing SKILL.md. The skill
// id comes from an existing canonical manifest when one is present, so ids
// survive renames; otherwise a fresh id is assigned (and persisted by the
// engine on the first sync).
func Scan(fs fsys.FS, libraryRoot string) ([]model.SkillRef, error) {
	defer logging.Timer("discovery_scan")()

	exists, err := fs.Exists(libraryRoot)
	if err != nil {
		return nil, err
	}
	if !exists {
		logging.Debug("library root not found", logging.Path(libraryRoot))
		return nil, nil
	}

	infos, err := fs.ReadDir(libraryRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read library root %q: %w", libraryRoot, err)
	}

	var skills []model.SkillRef
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		dir := filepath.Join(libraryRoot, info.Name())

		marker, err := fs.Exists(filepath.Join(dir, model.ContentMarker))
		if err != nil {
			return nil, err
		}
		if !marker {
			continue
		}

		skill, err := scanSkill(fs, dir, info.Name())
		if err != nil {
			logging.Warn("skipping unreadable skill",
				logging.Path(dir),
				logging.Err(err),
			)
			continue
		}
		skills = append(skills, skill)
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })

	logging.Debug("scanned library",
		logging.Path(libraryRoot),
		logging.Count(len(skills)),
	)
	return skills, nil
}

// scanSkill builds the SkillRef for one library directory.
func scanSkill(fs fsys.FS, dir, dirName string) (model.SkillRef, error) {
	content, err := fs.ReadFile(filepath.Join(dir, model.ContentMarker))
	if err != nil {
		return model.SkillRef{}, fmt.Errorf("failed to read %s: %w", model.ContentMarker, err)
	}

	fm := parseFrontMatter(content)
	name := fm.Name
	if name == "" {
		name = dirName
	}

	id, err := skillID(fs, dir)
	if err != nil {
		return model.SkillRef{}, err
	}

	return model.SkillRef{
		ID:          id,
		Name:        name,
		Description: fm.Description,
		Dir:         dir,
	}, nil
}

// skillID returns the skill's persisted id from the canonical manifest, or
// assigns a new one when the directory has never been synced.
func skillID(fs fsys.FS, dir string) (string, error) {
	m, err := manifest.Load(fs, dir)
	if err != nil {
		return "", err
	}
	if m != nil && m.ManagedBy == manifest.Marker && m.SkillID != "" {
		return m.SkillID, nil
	}

	id := uuid.NewString()
	logging.Debug("assigned new skill id",
		logging.Path(dir),
		logging.Skill(id),
	)
	return id, nil
}

// parseFrontMatter extracts the YAML front matter block, tolerating files
// without one.
func parseFrontMatter(content []byte) frontMatter {
	var fm frontMatter

	trimmed := bytes.TrimLeft(content, "\uFEFF\r\n ")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return fm
	}

	rest := string(trimmed[3:])
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm
	}

	// Malformed front matter degrades to directory-name identity
	_ = yaml.Unmarshal([]byte(rest[:end]), &fm)
	return fm
}
