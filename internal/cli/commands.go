package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/skillmirror/internal/config"
	"github.com/klauern/skillmirror/internal/detector"
	"github.com/klauern/skillmirror/internal/discovery"
	"github.com/klauern/skillmirror/internal/engine"
	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/state"
	"github.com/klauern/skillmirror/internal/sweep"
	"github.com/klauern/skillmirror/internal/ui"
)

// host bundles everything a command needs to operate.
type host struct {
	cfg    *config.Config
	st     *state.State
	fs     fsys.FS
	engine *engine.Engine
	coord  *sweep.Coordinator
}

// newHost loads configuration and state and wires the engine.
func newHost(cmd *cli.Command) (*host, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	st, err := state.Load("")
	if err != nil {
		return nil, err
	}

	fs := fsys.NewOS()
	eng := engine.New(fs)
	return &host{
		cfg:    cfg,
		st:     st,
		fs:     fs,
		engine: eng,
		coord:  sweep.New(eng, cfg, st),
	}, nil
}

// findSkill resolves a skill by name or id from the library.
func (h *host) findSkill(nameOrID string) (model.SkillRef, error) {
	skills, err := discovery.Scan(h.fs, h.cfg.Library.Path)
	if err != nil {
		return model.SkillRef{}, err
	}
	for _, s := range skills {
		if s.Name == nameOrID || s.ID == nameOrID {
			return s, nil
		}
	}
	return model.SkillRef{}, fmt.Errorf("skill %q not found in library %s", nameOrID, h.cfg.Library.Path)
}

// findLocation resolves a configured location by id.
func (h *host) findLocation(id string) (model.Location, error) {
	loc, ok := h.cfg.Location(id)
	if !ok {
		return model.Location{}, fmt.Errorf("location %q is not configured", id)
	}
	return loc, nil
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Synchronize skills with every enabled location",
		UsageText: "skillmirror sync [options] [skill]",
		Description: `Run a sync pass over the library, or over a single skill.

   Each skill's replicas are compared against the last-synced baseline. A
   single changed replica wins and is propagated everywhere; simultaneous
   changes surface as a conflict for you to resolve.

   Examples:
     skillmirror sync
     skillmirror sync my-skill
     skillmirror sync my-skill --force-source codex`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "force-source",
				Usage: "Location id whose content wins (after a conflict)",
			},
			&cli.BoolFlag{
				Name:  "no-input",
				Usage: "Never prompt; leave conflicts unresolved",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			h, err := newHost(cmd)
			if err != nil {
				return err
			}

			if cmd.Args().Len() > 1 {
				return errors.New("sync takes at most one skill name")
			}

			if name := cmd.Args().First(); name != "" {
				return h.syncOne(name, cmd.String("force-source"), cmd.Bool("no-input"))
			}
			if cmd.String("force-source") != "" {
				return errors.New("--force-source requires naming a single skill")
			}
			return h.syncAll(ctx, cmd.Bool("no-input"), !cmd.Bool("no-progress"))
		},
	}
}

// syncOne syncs a single skill, optionally with a forced winner.
func (h *host) syncOne(name, forceSource string, noInput bool) error {
	skill, err := h.findSkill(name)
	if err != nil {
		return err
	}

	var outcome sweep.SkillOutcome
	if forceSource != "" {
		outcome = h.coord.Resolve(skill, forceSource)
	} else {
		outcome = h.coord.SyncSkill(skill)
	}
	if outcome.Err != nil {
		return outcome.Err
	}

	printOutcome(outcome)

	if conflict, ok := outcome.Outcome.(engine.Conflict); ok && !noInput {
		return h.resolveInteractively(skill, conflict)
	}
	return nil
}

// syncAll sweeps the whole library.
func (h *host) syncAll(ctx context.Context, noInput, progress bool) error {
	skills, err := discovery.Scan(h.fs, h.cfg.Library.Path)
	if err != nil {
		return err
	}
	if len(skills) == 0 {
		fmt.Println("No skills found in", h.cfg.Library.Path)
		return nil
	}

	result, err := h.coord.Run(ctx, skills, sweep.Options{Progress: progress})
	if err != nil {
		return err
	}

	for _, o := range result.Skills {
		printOutcome(o)
	}
	fmt.Println()
	fmt.Print(result.Summary())

	if !noInput {
		for _, o := range result.Conflicted() {
			conflict := o.Outcome.(engine.Conflict)
			if err := h.resolveInteractively(o.Skill, conflict); err != nil {
				return err
			}
		}
	}

	if !result.Success() {
		return errors.New("one or more skills failed to sync")
	}
	return nil
}

// printOutcome renders one skill's result as a status line.
func printOutcome(o sweep.SkillOutcome) {
	switch {
	case o.Err != nil:
		fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", o.Skill.Name, o.Err)))
	case isConflict(o.Outcome):
		fmt.Println(ui.StatusConflict(fmt.Sprintf("%s: %s", o.Skill.Name, o.Outcome)))
	case isUpToDate(o.Outcome):
		fmt.Println(ui.StatusSkipped(fmt.Sprintf("%s: %s", o.Skill.Name, o.Outcome)))
	default:
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s: %s", o.Skill.Name, o.Outcome)))
	}
}

func isConflict(o engine.Outcome) bool {
	_, ok := o.(engine.Conflict)
	return ok
}

func isUpToDate(o engine.Outcome) bool {
	_, ok := o.(engine.UpToDate)
	return ok
}

func skillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List skills in the canonical library",
		Action: func(_ context.Context, cmd *cli.Command) error {
			h, err := newHost(cmd)
			if err != nil {
				return err
			}

			skills, err := discovery.Scan(h.fs, h.cfg.Library.Path)
			if err != nil {
				return err
			}
			if len(skills) == 0 {
				fmt.Println("No skills found in", h.cfg.Library.Path)
				return nil
			}

			for _, s := range skills {
				enabled := h.st.EnabledLocations(s.ID)
				line := ui.Bold(s.Name)
				if s.Description != "" {
					line += " " + ui.Dim(s.Description)
				}
				fmt.Println(line)
				if len(enabled) > 0 {
					fmt.Printf("    enabled: %s\n", strings.Join(enabled, ", "))
				}
			}
			return nil
		},
	}
}

func locationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "locations",
		Usage: "List configured tool locations",
		Commands: []*cli.Command{
			{
				Name:  "detect",
				Usage: "Detect installed tools and propose locations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Add newly detected locations to the config",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return detectLocations(cmd)
				},
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			h, err := newHost(cmd)
			if err != nil {
				return err
			}
			if len(h.cfg.Locations) == 0 {
				fmt.Println("No locations configured. Try: skillmirror locations detect --save")
				return nil
			}
			for _, loc := range h.cfg.Locations {
				fmt.Printf("%s (%s)\n", ui.Bold(loc.ID), loc.DisplayName())
				fmt.Printf("    active:   %s\n", loc.ActiveRoot)
				fmt.Printf("    disabled: %s\n", loc.DisabledRoot)
			}
			return nil
		},
	}
}

// detectLocations probes for known tools and optionally persists new entries.
func detectLocations(cmd *cli.Command) error {
	h, err := newHost(cmd)
	if err != nil {
		return err
	}

	detected := detector.DetectAll()
	if len(detected) == 0 {
		fmt.Println("No known tools detected")
		return nil
	}

	added := 0
	for _, d := range detected {
		status := "detected"
		if _, exists := h.cfg.Location(d.Location.ID); exists {
			status = "already configured"
		} else if cmd.Bool("save") {
			h.cfg.Locations = append(h.cfg.Locations, d.Location)
			status = "added"
			added++
		}
		fmt.Printf("%s %s (%s): %s\n",
			ui.StatusSuccess(""), d.Location.ID, d.Source, status)
	}

	if added > 0 {
		if err := h.cfg.Save(cmd.String("config")); err != nil {
			return err
		}
		fmt.Printf("Saved %d location(s)\n", added)
	}
	return nil
}

func enableCommand() *cli.Command {
	return &cli.Command{
		Name:      "enable",
		Usage:     "Enable a skill for a location",
		UsageText: "skillmirror enable <skill> <location>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			h, skill, loc, err := skillLocationArgs(cmd)
			if err != nil {
				return err
			}

			h.st.Enable(skill.ID, loc.ID)
			if err := h.st.Save(); err != nil {
				return err
			}

			if err := h.engine.Export(skill.Dir, skill.Name, skill.ID, loc); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s exported to %s", skill.Name, loc.ID)))
			return nil
		},
	}
}

func disableCommand() *cli.Command {
	return &cli.Command{
		Name:      "disable",
		Usage:     "Disable a skill at a location, parking its replica",
		UsageText: "skillmirror disable <skill> <location>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			h, skill, loc, err := skillLocationArgs(cmd)
			if err != nil {
				return err
			}

			if err := h.engine.Disable(skill.ID, skill.Name, loc); err != nil {
				return err
			}
			h.st.Disable(skill.ID, loc.ID)
			if err := h.st.Save(); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s disabled at %s", skill.Name, loc.ID)))
			return nil
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove every replica of a skill from a location",
		UsageText: "skillmirror remove <skill> <location>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			h, skill, loc, err := skillLocationArgs(cmd)
			if err != nil {
				return err
			}

			if err := h.engine.Remove(skill.ID, loc); err != nil {
				return err
			}
			h.st.Disable(skill.ID, loc.ID)
			if err := h.st.Save(); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s removed from %s", skill.Name, loc.ID)))
			return nil
		},
	}
}

// skillLocationArgs parses the common `<skill> <location>` argument pair.
func skillLocationArgs(cmd *cli.Command) (*host, model.SkillRef, model.Location, error) {
	if cmd.Args().Len() != 2 {
		return nil, model.SkillRef{}, model.Location{},
			fmt.Errorf("%s requires exactly 2 arguments: <skill> <location>", cmd.Name)
	}

	h, err := newHost(cmd)
	if err != nil {
		return nil, model.SkillRef{}, model.Location{}, err
	}

	skill, err := h.findSkill(cmd.Args().Get(0))
	if err != nil {
		return nil, model.SkillRef{}, model.Location{}, err
	}
	loc, err := h.findLocation(cmd.Args().Get(1))
	if err != nil {
		return nil, model.SkillRef{}, model.Location{}, err
	}
	return h, skill, loc, nil
}
