// Package engine implements the synchronization core: content-addressed
// change detection against a persisted baseline, single-writer-wins
// propagation, conflict construction, and the export/disable/remove replica
// lifecycle.
//
// The engine is stateless and purely synchronous. One SyncSkill call
// processes exactly one skill; callers must not invoke it concurrently for
// the same (skill, location) pair. Propagation across multiple locations is
// not transactional: an interrupted pass can leave the canonical manifest
// updated while some locations are not yet re-exported, and the next pass
// heals that by recomputing hashes and re-propagating. A genuine mid-copy
// crash is a documented best-effort limitation.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/klauern/skillmirror/internal/digest"
	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/manifest"
	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/replica"
)

// Engine runs the sync protocol against an injected filesystem.
type Engine struct {
	fs fsys.FS
}

// New creates an engine operating on the given filesystem.
func New(fs fsys.FS) *Engine {
	return &Engine{fs: fs}
}

// Request carries everything one SyncSkill invocation needs. The engine holds
// no state between calls.
type Request struct {
	// SkillID is the skill's stable opaque id.
	SkillID string

	// PreferredName names newly created export directories. Existing
	// replicas are matched by manifest, never by name.
	PreferredName string

	// CanonicalDir is the canonical replica's directory in the library.
	CanonicalDir string

	// Enabled lists the ids of the locations this skill is enabled for, in
	// processing order.
	Enabled []string

	// Locations maps location ids to their descriptors. It must cover every
	// id in Enabled.
	Locations map[string]model.Location

	// ForceSource, when set, names the winning replica directly (a location
	// id or the canonical sentinel) instead of deriving it from the changed
	// set. Used to feed back a human's conflict resolution.
	ForceSource string
}

// state is one reachable replica's position in the current pass.
type state struct {
	location string
	path     string
	hash     string
}

// SyncSkill runs one full sync pass for one skill and returns the outcome.
//
// The canonical replica is compared and eligible to win exactly like any
// exported replica: a direct edit to the library is a valid, auto-propagated
// change. Enabled locations with no replica are "missing", not "changed";
// they receive a fresh export and never trigger a conflict. Divergence is
// judged per replica against the baseline hash, not pairwise, so two replicas
// that independently arrived at identical content still conflict.
func (e *Engine) SyncSkill(req Request) (Outcome, error) {
	defer logging.Timer("sync_skill")()

	baseline, err := e.ensureBaseline(req)
	if err != nil {
		return nil, err
	}

	canonicalHash, err := digest.Tree(e.fs, req.CanonicalDir)
	if err != nil {
		return nil, err
	}

	states := []state{{
		location: manifest.CanonicalTool,
		path:     req.CanonicalDir,
		hash:     canonicalHash,
	}}
	var missing []model.Location

	for _, id := range req.Enabled {
		loc, ok := req.Locations[id]
		if !ok {
			return nil, fmt.Errorf("enabled location %q has no descriptor", id)
		}

		path, err := replica.Find(e.fs, req.SkillID, loc.ActiveRoot)
		if err != nil {
			return nil, err
		}
		if path == "" {
			missing = append(missing, loc)
			continue
		}

		hash, err := digest.Tree(e.fs, path)
		if err != nil {
			return nil, err
		}
		states = append(states, state{
			location: id,
			path:     path,
			hash:     hash,
		})
	}

	var changed []state
	for _, s := range states {
		if s.hash != baseline {
			changed = append(changed, s)
		}
	}

	logging.Debug("computed changed set",
		logging.Skill(req.SkillID),
		logging.Hash(baseline),
		logging.Count(len(changed)),
		slog.Int("missing", len(missing)),
	)

	source, outcome, err := e.resolveSource(req, baseline, states, changed, missing)
	if err != nil || outcome != nil {
		return outcome, err
	}

	return e.propagate(req, *source, canonicalHash)
}

// resolveSource picks the winning replica, or short-circuits with a terminal
// outcome (UpToDate, ExportsCreated, or an unmutated Conflict snapshot).
func (e *Engine) resolveSource(req Request, baseline string, states, changed []state, missing []model.Location) (*state, Outcome, error) {
	if req.ForceSource != "" {
		for i := range states {
			if states[i].location == req.ForceSource {
				logging.Debug("using forced source",
					logging.Skill(req.SkillID),
					logging.Location(req.ForceSource),
				)
				return &states[i], nil, nil
			}
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingManagedExport, req.ForceSource)
	}

	switch len(changed) {
	case 1:
		return &changed[0], nil, nil

	case 0:
		if len(missing) == 0 {
			return nil, UpToDate{}, nil
		}
		created := make([]string, 0, len(missing))
		for _, loc := range missing {
			if err := e.Export(req.CanonicalDir, req.PreferredName, req.SkillID, loc); err != nil {
				return nil, nil, err
			}
			created = append(created, loc.ID)
		}
		return nil, ExportsCreated{Locations: created}, nil

	default:
		conflict := Conflict{SkillID: req.SkillID}
		for _, s := range states {
			conflict.Replicas = append(conflict.Replicas, ReplicaState{
				Location:            s.location,
				Path:                s.path,
				Hash:                s.hash,
				ChangedFromBaseline: s.hash != baseline,
			})
		}
		logging.Info("conflict detected",
			logging.Skill(req.SkillID),
			logging.Count(len(changed)),
		)
		return nil, conflict, nil
	}
}

// propagate makes the source's content canonical and re-exports it to every
// enabled location, refreshing manifests along the way.
func (e *Engine) propagate(req Request, source state, canonicalHash string) (Outcome, error) {
	winner := canonicalHash

	if source.location != manifest.CanonicalTool {
		if err := e.replaceContent(source.path, req.CanonicalDir); err != nil {
			return nil, err
		}
		var err error
		winner, err = digest.Tree(e.fs, req.CanonicalDir)
		if err != nil {
			return nil, err
		}
	}

	cm, err := manifest.Load(e.fs, req.CanonicalDir)
	if err != nil {
		return nil, err
	}
	if cm == nil {
		return nil, fmt.Errorf("%w: canonical manifest disappeared mid-sync", ErrCanonicalInvalid)
	}
	cm.Canonical = true
	cm.Tool = manifest.CanonicalTool
	cm.Touch(winner)
	if err := manifest.Save(e.fs, cm, req.CanonicalDir); err != nil {
		return nil, err
	}

	for _, id := range req.Enabled {
		loc := req.Locations[id]

		if id == source.location {
			// Content is already correct at the source; only its sync
			// record moves forward.
			m, err := manifest.Load(e.fs, source.path)
			if err != nil {
				return nil, err
			}
			if m == nil {
				return nil, fmt.Errorf("%w: %s", ErrMissingManagedExport, id)
			}
			m.Touch(winner)
			if err := manifest.Save(e.fs, m, source.path); err != nil {
				return nil, err
			}
			continue
		}

		if err := e.Export(req.CanonicalDir, req.PreferredName, req.SkillID, loc); err != nil {
			return nil, err
		}
	}

	logging.Info("propagated",
		logging.Skill(req.SkillID),
		logging.Location(source.location),
		logging.Hash(winner),
	)
	return Propagated{Source: source.location}, nil
}

// ensureBaseline validates the canonical directory and returns the baseline
// hash, seeding the canonical manifest from current content on the first-ever
// sync.
func (e *Engine) ensureBaseline(req Request) (string, error) {
	info, err := e.fs.Stat(req.CanonicalDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCanonicalInvalid, req.CanonicalDir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrArchiveNotMaterialized, req.CanonicalDir)
	}

	m, err := manifest.Load(e.fs, req.CanonicalDir)
	if err != nil {
		return "", err
	}
	if m != nil && m.ManagedBy == manifest.Marker && m.SkillID != req.SkillID {
		return "", fmt.Errorf("%w: canonical manifest belongs to skill %q", ErrCanonicalInvalid, m.SkillID)
	}

	if m == nil || m.LastSyncedHash == "" {
		hash, err := digest.Tree(e.fs, req.CanonicalDir)
		if err != nil {
			return "", err
		}
		m = manifest.New(req.SkillID, manifest.CanonicalTool, true, hash)
		if err := manifest.Save(e.fs, m, req.CanonicalDir); err != nil {
			return "", err
		}
		logging.Debug("seeded canonical baseline",
			logging.Skill(req.SkillID),
			logging.Hash(hash),
		)
	}

	if m.LastSyncedHash == "" {
		return "", fmt.Errorf("%w: no baseline hash after seeding", ErrCanonicalInvalid)
	}
	return m.LastSyncedHash, nil
}
