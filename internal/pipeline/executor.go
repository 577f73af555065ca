// Package pipeline executes a validated target graph with a pool of
// concurrent workers, honoring make-style file freshness and removing the
// declared outputs of failed targets so no corrupt partial artifact survives
// into the next run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/dag"
	"github.com/vk/searchengine/internal/registry"
)

// DefaultWorkers is used when the caller does not set a worker count.
const DefaultWorkers = 4

// Executor orchestrates the end-to-end execution of a target graph.
type Executor struct {
	graph    *dag.Graph
	workers  int
	registry *registry.Registry
	evalCtx  *hcl.EvalContext

	wg       sync.WaitGroup
	mu       sync.Mutex
	firstErr error
}

// New creates an executor for the given graph. evalCtx supplies the `local.*`
// variables used when decoding target arguments.
func New(graph *dag.Graph, workers int, reg *registry.Registry, evalCtx *hcl.EvalContext) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Executor{
		graph:    graph,
		workers:  workers,
		registry: reg,
		evalCtx:  evalCtx,
	}
}

// Run executes every node in the graph. It returns the first error
// encountered; dependents of a failed target are skipped, not run.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if len(e.graph.Nodes) == 0 {
		logger.Warn("No targets in graph, nothing to do.")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readyChan := make(chan *dag.Node, len(e.graph.Nodes))
	e.wg.Add(len(e.graph.Nodes))

	for i := 0; i < e.workers; i++ {
		go e.worker(ctx, readyChan, cancel, i)
	}

	seeded := 0
	for _, n := range e.graph.Nodes {
		if len(n.Deps) == 0 {
			readyChan <- n
			seeded++
		}
	}
	logger.Debug("Executor seeded ready targets.", "count", seeded, "workers", e.workers)

	e.wg.Wait()
	close(readyChan)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstErr
}

// recordErr keeps the first error seen across all workers.
func (e *Executor) recordErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.firstErr == nil {
		e.firstErr = err
	}
}

// skipDependents marks every transitive dependent of n as skipped. Only the
// Pending -> Skipped transition performs accounting, so a node reached via
// two failed dependencies is counted once.
func (e *Executor) skipDependents(ctx context.Context, n *dag.Node, cause error) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		if dependent.CASState(dag.Pending, dag.Skipped) {
			dependent.Err = fmt.Errorf("dependency %s: %w", n.ID, cause)
			logger.Warn("⏭️ Skipping target.", "target", dependent.ID, "failed_dependency", n.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent, cause)
		}
	}
}

// removeOutputs deletes the declared outputs of a failed target so a partial
// artifact is never treated as satisfied by a later run.
func (e *Executor) removeOutputs(ctx context.Context, target string, outputs []string) {
	logger := ctxlog.FromContext(ctx)
	for _, out := range outputs {
		err := os.Remove(out)
		if err != nil && !os.IsNotExist(err) {
			logger.Error("Failed to remove partial output.", "target", target, "output", out, "error", err)
			continue
		}
		if err == nil {
			logger.Debug("Removed partial output.", "target", target, "output", out)
		}
	}
}
