// Package main is the CLI entry point for racesim.
// It runs terminal race simulations and manages stored race presets.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/whhaicheng/racesim/internal/app/usecase"
	"github.com/whhaicheng/racesim/internal/domain/config"
	"github.com/whhaicheng/racesim/internal/infra/database"
	"github.com/whhaicheng/racesim/internal/infra/database/repository"
)

const Version = "0.3.0"

// errUsage marks a malformed command line; help has already been printed.
var errUsage = errors.New("invalid usage")

// cliEnv holds environment settings needed before the settings file is read.
type cliEnv struct {
	ConfigPath string `env:"RACESIM_CONFIG"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		showHelp(stdout)
		return 2
	}

	cmd := args[0]
	switch cmd {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "racesim v%s\n", Version)
		return 0
	case "help", "-h", "--help":
		showHelp(stdout)
		return 0
	case "run", "preset", "config":
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		showHelp(stderr)
		return 2
	}

	a, err := newApp(context.Background(), stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	switch cmd {
	case "run":
		err = a.runRace(args[1:])
	case "preset":
		err = a.preset(args[1:])
	case "config":
		err = a.configCommand(args[1:])
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		a.logger.Error("Command failed", "command", cmd, "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func showHelp(w io.Writer) {
	fmt.Fprintf(w, `racesim v%s - Terminal Race Simulator

USAGE:
    racesim <command> [arguments]

COMMANDS:
    run                         Run a race until every racer finishes (Ctrl-C stops it)
    preset list                 List stored presets
    preset show <name>          Print a preset as YAML
    preset save <name> [flags]  Store race parameters under a name
    preset delete <name>        Delete a preset
    preset export [names...]    Write presets as YAML (--out file)
    preset import <file>        Read presets from YAML (--overwrite)
    config show                 Print the effective configuration
    config path                 Print the settings file location
    config reset                Restore default settings
    version                     Show version information
    help                        Show this help message

RUN FLAGS:
    --preset NAME       start from a stored preset
    --racers N          number of racers
    --length N          distance to the finish line
    --interval D        polling interval (e.g. 500ms, 1s)
    --policy P          speed adjustment policy: per_slice or fixed
    --keep-polling      keep polling after every racer has finished
    --format F          console, json or markdown
    --width N           width of a full progress bar
    --no-clear          do not scroll the previous frame away
    --seed N            seed racers deterministically

ENVIRONMENT:
    RACESIM_CONFIG, RACESIM_RACERS, RACESIM_RACE_LENGTH, RACESIM_TICK_INTERVAL,
    RACESIM_FACTOR_POLICY, RACESIM_STOP_WHEN_FINISHED, RACESIM_FORMAT,
    RACESIM_DB_PATH, RACESIM_LOG_DIR, RACESIM_LOG_LEVEL,
    RACESIM_OTEL_ENDPOINT, RACESIM_OTEL_ENABLED

EXAMPLES:
    racesim run
    racesim run --racers 5 --length 200 --interval 250ms
    racesim preset save sprint --racers 20 --length 60
    racesim run --preset sprint --format json
`, Version)
}

// app holds the services shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg      *config.Config
	settings *usecase.SettingsUseCase
	presets  *usecase.PresetUseCase
	logger   *slog.Logger

	db      *sql.DB
	logFile *os.File
}

func newApp(ctx context.Context, stdout, stderr io.Writer) (*app, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	settingsRepo := repository.NewSettingsRepository(path)

	cfg, err := usecase.NewSettingsUseCase(settingsRepo, nil).EffectiveConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logFile, err := openLogFile(cfg.Advanced.LogDir, time.Now())
	if err != nil {
		return nil, err
	}
	logger := newLogger(logFile, stderr, parseLevel(cfg.Advanced.LogLevel))
	slog.SetDefault(logger)

	logger.Info("racesim started", "version", Version, "settings", path, "log_file", logFile.Name())

	db, err := database.InitializeSQLite(ctx, cfg.Database.Path)
	if err != nil {
		logger.Error("Database init failed", "path", cfg.Database.Path, "error", err)
		logFile.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	presets := usecase.NewPresetUseCase(repository.NewSQLitePresetRepository(db))

	return &app{
		stdout:   stdout,
		stderr:   stderr,
		cfg:      cfg,
		settings: usecase.NewSettingsUseCase(settingsRepo, presets),
		presets:  presets,
		logger:   logger,
		db:       db,
		logFile:  logFile,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Close database failed", "error", err)
	}
	a.logFile.Close()
}

// settingsPath returns $RACESIM_CONFIG or ~/.racesim/config.json.
func settingsPath() (string, error) {
	var e cliEnv
	if err := env.Parse(&e); err != nil {
		return "", fmt.Errorf("parse env: %w", err)
	}
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".racesim", "config.json"), nil
}
