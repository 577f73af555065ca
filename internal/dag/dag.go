// Package dag builds and validates the dependency graph of build targets.
package dag

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/manifest"
)

// State describes a node's position in the execution lifecycle.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
	UpToDate
)

// String returns the lowercase name of the state for logs.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case UpToDate:
		return "up-to-date"
	}
	return "unknown"
}

// Node is a single target in the graph. Err is written only by the worker
// that executes or skips the node, before its terminal state becomes visible.
type Node struct {
	ID         string
	Target     *manifest.Target
	Deps       map[string]*Node
	Dependents map[string]*Node
	Err        error

	state    atomic.Int32
	depCount atomic.Int32
}

// State returns the node's current state.
func (n *Node) State() State { return State(n.state.Load()) }

// SetState transitions the node to the given state.
func (n *Node) SetState(s State) { n.state.Store(int32(s)) }

// CASState transitions the node from one state to another atomically. The
// executor uses it so a node queued for execution and a concurrent skip
// cannot both claim the node.
func (n *Node) CASState(from, to State) bool {
	return n.state.CompareAndSwap(int32(from), int32(to))
}

// DecrementDepCount records the completion of one dependency and returns the
// number still outstanding.
func (n *Node) DecrementDepCount() int32 { return n.depCount.Add(-1) }

// setInitialCounters primes the dependency counter before execution.
func (n *Node) setInitialCounters() { n.depCount.Store(int32(len(n.Deps))) }

// Graph is the validated dependency graph of a pipeline.
type Graph struct {
	Nodes map[string]*Node
}

// Build constructs a complete, validated dependency graph from a pipeline
// model. Edges come from explicit depends_on lists and implicitly from one
// target consuming a file another target declares as an output.
func Build(ctx context.Context, p *manifest.Pipeline) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.")

	graph := &Graph{Nodes: make(map[string]*Node, len(p.Targets))}

	// First pass: create all nodes.
	for _, name := range p.Order {
		graph.Nodes[name] = &Node{
			ID:         name,
			Target:     p.Targets[name],
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
		}
	}
	logger.Debug("Build: node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: explicit edges.
	for _, node := range graph.Nodes {
		for _, dep := range node.Target.DependsOn {
			depNode, ok := graph.Nodes[dep]
			if !ok {
				return nil, fmt.Errorf("target %q depends on unknown target %q", node.ID, dep)
			}
			if depNode == node {
				return nil, fmt.Errorf("target %q depends on itself", node.ID)
			}
			node.Deps[dep] = depNode
			depNode.Dependents[node.ID] = node
		}
	}

	// Third pass: implicit file edges (a source produced by another target).
	producers := map[string]*Node{}
	for _, node := range graph.Nodes {
		for _, out := range node.Target.Outputs {
			if prev, dup := producers[out]; dup {
				return nil, fmt.Errorf("output %q produced by both %q and %q", out, prev.ID, node.ID)
			}
			producers[out] = node
		}
	}
	for _, node := range graph.Nodes {
		for _, src := range node.Target.Sources {
			producer, ok := producers[src]
			if !ok || producer == node {
				continue
			}
			node.Deps[producer.ID] = producer
			producer.Dependents[node.ID] = node
		}
	}
	logger.Debug("Build: node linking complete.")

	for _, node := range graph.Nodes {
		node.setInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: graph construction successful.")

	return graph, nil
}

// Restrict returns the subgraph needed to bring the requested targets up to
// date: the targets themselves plus their transitive dependencies.
func (g *Graph) Restrict(requested []string) (*Graph, error) {
	keep := map[string]*Node{}
	var visit func(n *Node)
	visit = func(n *Node) {
		if _, ok := keep[n.ID]; ok {
			return
		}
		keep[n.ID] = n
		for _, dep := range n.Deps {
			visit(dep)
		}
	}

	for _, name := range requested {
		n, ok := g.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("unknown target %q (known targets: %v)", name, g.TargetNames())
		}
		visit(n)
	}

	sub := &Graph{Nodes: make(map[string]*Node, len(keep))}
	for id, n := range keep {
		nn := &Node{
			ID:         id,
			Target:     n.Target,
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
		}
		sub.Nodes[id] = nn
	}
	for id, n := range keep {
		nn := sub.Nodes[id]
		for depID := range n.Deps {
			if depNode, ok := sub.Nodes[depID]; ok {
				nn.Deps[depID] = depNode
				depNode.Dependents[id] = nn
			}
		}
	}
	for _, n := range sub.Nodes {
		n.setInitialCounters()
	}
	return sub, nil
}

// TargetNames returns the sorted names of all targets in the graph.
func (g *Graph) TargetNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// detectCycles checks the graph for cycles with a classic three-set
// depth-first search.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("cycle detected involving target '%s'", n.ID)
		}

		temporary[n.ID] = true
		for _, dependent := range n.Dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n.ID)
		permanent[n.ID] = true

		return nil
	}

	for _, n := range g.Nodes {
		if !permanent[n.ID] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}
