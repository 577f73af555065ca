// Package app wires the build pipeline and the web server together and owns
// the process lifecycle for both commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/registry"
)

// CmdBuild and CmdServe are the two top-level commands.
const (
	CmdBuild = "build"
	CmdServe = "serve"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// Command is CmdBuild or CmdServe.
	Command string
	// ManifestPath is the build manifest file or directory.
	ManifestPath string
	// Targets restricts a build to the named targets and their dependencies.
	// Empty means all targets.
	Targets []string
	// ConfigPath is the optional serve configuration file.
	ConfigPath string
	// Listen overrides the configured listen address when non-empty.
	Listen      string
	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// New constructs an App with its own logger and step registry. Passing no
// modules registers the built-in step set.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All step modules registered.", "count", len(modules), "types", reg.Types())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Run dispatches to the selected command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	switch a.config.Command {
	case CmdBuild:
		return a.runBuild(ctx)
	case CmdServe:
		return a.runServe(ctx)
	default:
		return fmt.Errorf("unknown command %q", a.config.Command)
	}
}
