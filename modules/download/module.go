// Package download provides the `download` step: a single HTTP fetch written
// atomically to the target's declared output file.
package download

import (
	"context"
	"fmt"

	"github.com/vk/searchengine/internal/registry"
)

// Module implements the registry.Module interface. It's the entrypoint for
// the download module, responsible for registering its step handler.
type Module struct{}

// Input defines the arguments for a download target.
type Input struct {
	// URL is the remote file to fetch.
	URL string `hcl:"url"`
	// Accept optionally overrides the Accept request header.
	Accept string `hcl:"accept,optional"`
}

// Register registers the download step with the application's registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("download", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       onRunDownload,
	})
}

func onRunDownload(ctx context.Context, sc *registry.StepContext, input any) error {
	in := input.(*Input)
	if len(sc.Outputs) != 1 {
		return fmt.Errorf("download target %q must declare exactly one output", sc.Target)
	}
	return FetchToFile(ctx, in.URL, in.Accept, sc.Outputs[0])
}
