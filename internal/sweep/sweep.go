// Package sweep coordinates engine runs across the whole library. It is the
// serialized background pass of the host: skills are processed strictly one
// after another, a single skill's failure is captured and the sweep
// continues, and pending human conflict resolutions are fed back to the
// engine as forced sources.
package sweep

import (
	"context"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/klauern/skillmirror/internal/config"
	"github.com/klauern/skillmirror/internal/engine"
	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/state"
)

// Coordinator drives per-skill engine invocations.
type Coordinator struct {
	engine *engine.Engine
	cfg    *config.Config
	st     *state.State
}

// Options configures a sweep.
type Options struct {
	// Progress enables a progress bar on Writer during the sweep.
	Progress bool
	// Writer is the progress destination. Defaults to os.Stderr.
	Writer io.Writer
}

// New creates a coordinator over the given engine, configuration, and state.
func New(eng *engine.Engine, cfg *config.Config, st *state.State) *Coordinator {
	return &Coordinator{engine: eng, cfg: cfg, st: st}
}

// Run syncs every given skill serially and returns the aggregated result.
// Consumed conflict resolutions are persisted back to the state file even
// when individual skills fail.
func (c *Coordinator) Run(ctx context.Context, skills []model.SkillRef, opts Options) (*Result, error) {
	defer logging.Timer("sweep")()

	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	var bar *progressbar.ProgressBar
	if opts.Progress && len(skills) > 0 {
		bar = progressbar.NewOptions(len(skills),
			progressbar.OptionSetWriter(opts.Writer),
			progressbar.OptionSetDescription("Syncing skills"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	result := &Result{Skills: make([]SkillOutcome, 0, len(skills))}
	resolutionsTaken := false

	for _, skill := range skills {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := c.syncOne(skill, &resolutionsTaken)
		result.Skills = append(result.Skills, outcome)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if resolutionsTaken {
		if err := c.st.Save(); err != nil {
			return result, err
		}
	}

	logging.Debug("sweep completed",
		logging.Count(len(result.Skills)),
	)
	return result, nil
}

// SyncSkill syncs one skill, applying any pending conflict resolution, and
// persists consumed resolutions.
func (c *Coordinator) SyncSkill(skill model.SkillRef) SkillOutcome {
	taken := false
	outcome := c.syncOne(skill, &taken)
	if taken {
		if err := c.st.Save(); err != nil && outcome.Err == nil {
			outcome.Err = err
		}
	}
	return outcome
}

// Resolve records a human's conflict decision for the skill and immediately
// re-syncs it with the chosen winner as forced source.
func (c *Coordinator) Resolve(skill model.SkillRef, winningLocation string) SkillOutcome {
	c.st.SetResolution(skill.ID, winningLocation)
	return c.SyncSkill(skill)
}

// syncOne builds the engine request for a skill and runs it, capturing the
// error instead of propagating it.
func (c *Coordinator) syncOne(skill model.SkillRef, resolutionsTaken *bool) SkillOutcome {
	req := engine.Request{
		SkillID:       skill.ID,
		PreferredName: skill.Name,
		CanonicalDir:  skill.Dir,
		Enabled:       c.st.EnabledLocations(skill.ID),
		Locations:     c.cfg.LocationMap(),
	}

	if winner, ok := c.st.TakeResolution(skill.ID); ok {
		req.ForceSource = winner
		*resolutionsTaken = true
		logging.Debug("applying stored resolution",
			logging.Skill(skill.Name),
			logging.Location(winner),
		)
	}

	outcome, err := c.engine.SyncSkill(req)
	if err != nil {
		logging.Error("skill sync failed",
			logging.Skill(skill.Name),
			logging.Err(err),
		)
		return SkillOutcome{Skill: skill, Err: err}
	}
	return SkillOutcome{Skill: skill, Outcome: outcome}
}
