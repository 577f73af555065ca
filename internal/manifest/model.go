// Package manifest loads the HCL build manifest and translates it into a
// format-agnostic pipeline model consumed by the DAG builder and executor.
package manifest

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Pipeline is the unified representation of a build manifest: the evaluated
// locals plus every target it declares.
type Pipeline struct {
	// Locals holds the evaluated values of all locals blocks.
	Locals map[string]cty.Value
	// Targets maps target name to its definition.
	Targets map[string]*Target
	// Order preserves declaration order for deterministic reporting.
	Order []string
}

// Target is the representation of a single `target` block.
type Target struct {
	Name string
	// Uses names the registered step type that executes this target. An
	// empty Uses makes the target a pure aggregation of its dependencies.
	Uses string
	// Sources and Outputs drive make-style freshness: a target whose
	// outputs all exist and are no older than any source is skipped.
	Sources []string
	Outputs []string
	// DependsOn lists targets that must complete before this one runs.
	DependsOn []string
	// Arguments is the undecoded body of the `arguments` block. The
	// executor decodes it into the step type's input struct.
	Arguments hcl.Body
}

// EvalContext returns the HCL evaluation context exposing `local.*` values.
func (p *Pipeline) EvalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	if len(p.Locals) > 0 {
		vars["local"] = cty.ObjectVal(p.Locals)
	}
	return &hcl.EvalContext{Variables: vars}
}
