package app

import (
	"context"
	"fmt"

	"github.com/vk/searchengine/internal/dag"
	"github.com/vk/searchengine/internal/manifest"
	"github.com/vk/searchengine/internal/pipeline"
)

// runBuild loads the manifest, builds the target graph, and executes it.
func (a *App) runBuild(ctx context.Context) error {
	a.logger.Debug("Loading build manifest.", "path", a.config.ManifestPath)
	p, err := manifest.NewLoader().Load(ctx, a.config.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	graph, err := dag.Build(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	if len(a.config.Targets) > 0 {
		graph, err = graph.Restrict(a.config.Targets)
		if err != nil {
			return err
		}
		a.logger.Debug("Graph restricted to requested targets.", "node_count", len(graph.Nodes))
	}

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No targets found in graph, nothing to do.")
		return nil
	}

	a.logger.Info("🚀 Starting build.", "targets", len(graph.Nodes), "workers", a.config.WorkerCount)
	exec := pipeline.New(graph, a.config.WorkerCount, a.registry, p.EvalContext())
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	a.logger.Info("🏁 Build finished.")

	return nil
}
