package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/whhaicheng/racesim/internal/app/usecase"
	"github.com/whhaicheng/racesim/internal/infra/random"
	"github.com/whhaicheng/racesim/internal/infra/render"
	"github.com/whhaicheng/racesim/internal/infra/telemetry"
)

// parameterFlags are the race parameter flags shared by run and preset save.
type parameterFlags struct {
	racers      *int
	length      *int
	interval    *time.Duration
	policy      *string
	keepPolling *bool
}

func addParameterFlags(fs *flag.FlagSet) *parameterFlags {
	return &parameterFlags{
		racers:      fs.Int("racers", 0, "number of racers"),
		length:      fs.Int("length", 0, "distance to the finish line"),
		interval:    fs.Duration("interval", 0, "polling interval"),
		policy:      fs.String("policy", "", "speed adjustment policy (per_slice, fixed)"),
		keepPolling: fs.Bool("keep-polling", false, "keep polling after every racer has finished"),
	}
}

// overrides returns only the flags given on the command line.
func (p *parameterFlags) overrides(fs *flag.FlagSet) usecase.ParameterOverrides {
	var o usecase.ParameterOverrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "racers":
			o.RacerCount = p.racers
		case "length":
			o.RaceLength = p.length
		case "interval":
			o.TickInterval = p.interval
		case "policy":
			o.FactorPolicy = p.policy
		case "keep-polling":
			stop := !*p.keepPolling
			o.StopWhenFinished = &stop
		}
	})
	return o
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// =============================================================================
// run
// =============================================================================

func (a *app) runRace(args []string) error {
	fs := a.newFlagSet("run")
	params := addParameterFlags(fs)
	presetName := fs.String("preset", "", "start from a stored preset")
	format := fs.String("format", a.cfg.Render.Format, "output format (console, json, markdown)")
	width := fs.Int("width", a.cfg.Render.Width, "width of a full progress bar")
	noClear := fs.Bool("no-clear", !a.cfg.Render.ClearScreen, "do not scroll the previous frame away")
	seed := fs.Int64("seed", 0, "seed racers deterministically")
	if err := fs.Parse(args); err != nil {
		return err
	}

	seeded := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := a.settings.ResolveParameters(ctx, *presetName, params.overrides(fs))
	if err != nil {
		return err
	}

	traceSettings, err := telemetry.SettingsFromEnv()
	if err != nil {
		return err
	}
	shutdownTracing, err := telemetry.Setup(ctx, "racesim", Version, traceSettings)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			a.logger.Warn("Flush traces failed", "error", err)
		}
	}()

	renderer, err := render.NewRenderer(render.Format(*format), a.stdout, render.Options{
		Width:       *width,
		ClearScreen: !*noClear,
	})
	if err != nil {
		return err
	}

	opts := []usecase.Option{
		usecase.WithLogger(a.logger),
		usecase.WithInboxSize(a.cfg.Advanced.InboxSize),
	}
	if seeded {
		opts = append(opts, usecase.WithSeedSource(random.Sequence(*seed)))
	}

	controller := usecase.NewRaceUseCase(renderer, opts...)
	defer controller.Close()

	id, err := controller.Start(ctx, p)
	if err != nil {
		return fmt.Errorf("start race: %w", err)
	}
	a.logger.Info("Race running", "race_id", id, "preset", *presetName, "format", *format)

	err = controller.Wait(ctx)
	if ctx.Err() != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := controller.Stop(stopCtx); err != nil {
			a.logger.Warn("Stop race failed", "race_id", id, "error", err)
		}
		a.logger.Info("Race interrupted", "race_id", id)
		return nil
	}
	return err
}

// =============================================================================
// preset
// =============================================================================

func (a *app) preset(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(a.stderr, "Usage: racesim preset <list|show|save|delete|export|import>")
		return errUsage
	}

	ctx := context.Background()
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		return a.presetList(ctx)
	case "show":
		if len(rest) != 1 {
			fmt.Fprintln(a.stderr, "Usage: racesim preset show <name>")
			return errUsage
		}
		return a.presets.ExportPresets(ctx, a.stdout, rest[0])
	case "save":
		return a.presetSave(ctx, rest)
	case "delete":
		if len(rest) != 1 {
			fmt.Fprintln(a.stderr, "Usage: racesim preset delete <name>")
			return errUsage
		}
		if err := a.presets.DeletePreset(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted preset %q\n", rest[0])
		return nil
	case "export":
		return a.presetExport(ctx, rest)
	case "import":
		return a.presetImport(ctx, rest)
	default:
		fmt.Fprintf(a.stderr, "Unknown preset command: %s\n", sub)
		return errUsage
	}
}

func (a *app) presetList(ctx context.Context) error {
	presets, err := a.presets.ListPresets(ctx)
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		fmt.Fprintln(a.stdout, "No presets found.")
		fmt.Fprintln(a.stdout, "\nTo add one: racesim preset save <name> --racers N --length N")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRACERS\tLENGTH\tINTERVAL\tPOLICY\tSTOP WHEN FINISHED\tDESCRIPTION")
	for _, p := range presets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%t\t%s\n",
			p.Name,
			p.Parameters.RacerCount,
			p.Parameters.RaceLength,
			p.Parameters.TickInterval,
			p.Parameters.FactorPolicy,
			p.Parameters.StopWhenFinished,
			p.Description)
	}
	return tw.Flush()
}

// presetSave stores the configured defaults with any flags applied.
func (a *app) presetSave(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args[0]) == 0 || args[0][0] == '-' {
		fmt.Fprintln(a.stderr, "Usage: racesim preset save <name> [--description TEXT] [run flags]")
		return errUsage
	}
	name := args[0]

	fs := a.newFlagSet("preset save")
	params := addParameterFlags(fs)
	description := fs.String("description", "", "free-form description")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	p, err := a.settings.ResolveParameters(ctx, "", params.overrides(fs))
	if err != nil {
		return err
	}

	saved, err := a.presets.SavePreset(ctx, name, *description, p)
	if err != nil {
		return err
	}
	a.logger.Info("Preset saved", "id", saved.ID, "name", saved.Name)
	fmt.Fprintf(a.stdout, "Saved preset %q (%d racers, length %d, every %s)\n",
		saved.Name, p.RacerCount, p.RaceLength, p.TickInterval)
	return nil
}

func (a *app) presetExport(ctx context.Context, args []string) error {
	fs := a.newFlagSet("preset export")
	out := fs.String("out", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		return a.presets.ExportPresets(ctx, a.stdout, fs.Args()...)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := a.presets.ExportPresets(ctx, f, fs.Args()...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	fmt.Fprintf(a.stdout, "Exported presets to %s\n", *out)
	return nil
}

func (a *app) presetImport(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args[0]) == 0 || args[0][0] == '-' {
		fmt.Fprintln(a.stderr, "Usage: racesim preset import <file> [--overwrite]")
		return errUsage
	}
	path := args[0]

	fs := a.newFlagSet("preset import")
	overwrite := fs.Bool("overwrite", false, "replace presets with the same name")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	imported, err := a.presets.ImportPresets(ctx, f, *overwrite)
	if err != nil {
		return err
	}
	for _, p := range imported {
		fmt.Fprintf(a.stdout, "Imported preset %q\n", p.Name)
	}
	return nil
}

// =============================================================================
// config
// =============================================================================

func (a *app) configCommand(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "Usage: racesim config <show|path|reset>")
		return errUsage
	}

	ctx := context.Background()
	switch args[0] {
	case "show":
		data, err := json.MarshalIndent(a.cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(a.stdout, string(data))
		return nil
	case "path":
		path, err := settingsPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, path)
		return nil
	case "reset":
		if err := a.settings.ResetSettings(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Settings restored to defaults.")
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown config command: %s\n", args[0])
		return errUsage
	}
}
