// Package command provides the `command` step: it runs an external program,
// the escape hatch for tools that stay outside this repository (the
// stylesheet compiler, the container builder, the vendored wheel-build
// script, locale tooling, test runners).
package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for a command target.
type Input struct {
	// Argv is the program and its arguments. No shell is involved.
	Argv []string `hcl:"argv"`
	// Dir optionally sets the working directory.
	Dir string `hcl:"dir,optional"`
	// Env lists extra KEY=VALUE pairs appended to the inherited environment.
	Env []string `hcl:"env,optional"`
}

// Register registers the command step with the application's registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("command", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       onRunCommand,
	})
}

func onRunCommand(ctx context.Context, sc *registry.StepContext, input any) error {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx)

	if len(in.Argv) == 0 {
		return fmt.Errorf("command target %q has an empty argv", sc.Target)
	}

	cmd := exec.CommandContext(ctx, in.Argv[0], in.Argv[1:]...)
	cmd.Dir = in.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(in.Env) > 0 {
		cmd.Env = append(os.Environ(), in.Env...)
	}

	logger.Info("Executing command.", "argv", in.Argv, "dir", in.Dir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", in.Argv[0], err)
	}
	return nil
}
