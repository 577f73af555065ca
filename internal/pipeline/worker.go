package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/dag"
	"github.com/vk/searchengine/internal/registry"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "target", n.ID)

		if ctx.Err() != nil {
			if n.CASState(dag.Pending, dag.Skipped) {
				n.Err = ctx.Err()
				e.wg.Done()
				e.skipDependents(ctx, n, ctx.Err())
			}
			continue
		}

		// A node can reach the ready queue after a concurrent failure
		// already skipped it; only the Pending -> Running claim executes.
		if !n.CASState(dag.Pending, dag.Running) {
			continue
		}

		workerLogger.Debug("Worker picked up target for execution.")
		err := e.runNode(ctx, n)

		if err != nil {
			workerLogger.Error("Target execution failed.", "error", err)
			n.Err = err
			n.SetState(dag.Failed)
			e.recordErr(fmt.Errorf("target %s: %w", n.ID, err))
			cancel()
			e.skipDependents(ctx, n, err)
			e.wg.Done()
			continue
		}

		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent target.", "dependent", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runNode executes a single target: freshness check, argument decoding, and
// the step handler. On step failure the target's declared outputs are removed
// before the error propagates.
func (e *Executor) runNode(ctx context.Context, n *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("target", n.ID)
	target := n.Target

	if len(target.Outputs) > 0 {
		fresh, err := upToDate(target)
		if err != nil {
			return err
		}
		if fresh {
			logger.Info("Target is up to date.", "outputs", target.Outputs)
			n.SetState(dag.UpToDate)
			return nil
		}
	}

	// Targets without a step type only aggregate their dependencies.
	if target.Uses == "" {
		logger.Debug("Aggregate target satisfied.")
		n.SetState(dag.Done)
		return nil
	}

	step, ok := e.registry.Step(target.Uses)
	if !ok {
		return fmt.Errorf("unknown step type %q (registered: %v)", target.Uses, e.registry.Types())
	}

	var input any
	if step.NewInput != nil {
		input = step.NewInput()
	}
	if input != nil && target.Arguments != nil {
		if diags := gohcl.DecodeBody(target.Arguments, e.evalCtx, input); diags.HasErrors() {
			return fmt.Errorf("decoding arguments: %w", diags)
		}
	}

	logger.Info("▶️ Running target.", "step", target.Uses)
	sc := &registry.StepContext{Target: n.ID, Outputs: target.Outputs}
	if err := step.Fn(ctx, sc, input); err != nil {
		e.removeOutputs(ctx, n.ID, target.Outputs)
		return err
	}

	n.SetState(dag.Done)
	logger.Info("✅ Target finished.")
	return nil
}
