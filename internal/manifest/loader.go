package manifest

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/fsutil"
)

// fileSchema captures the top-level structure of a manifest file.
type fileSchema struct {
	Locals  []*localsBlock `hcl:"locals,block"`
	Targets []*targetBlock `hcl:"target,block"`
}

type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// targetBlock defers decoding of the block body until locals are known.
type targetBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// targetBody is the second-phase decode of a target block, evaluated with
// `local.*` in scope.
type targetBody struct {
	Uses      string          `hcl:"uses,optional"`
	Sources   []string        `hcl:"sources,optional"`
	Outputs   []string        `hcl:"outputs,optional"`
	DependsOn []string        `hcl:"depends_on,optional"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
}

type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Loader parses HCL build manifests.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a manifest loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads the manifest at path, which may be a single .hcl file or a
// directory of .hcl files, and returns the evaluated pipeline model.
func (l *Loader) Load(ctx context.Context, path string) (*Pipeline, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := l.resolvePaths(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading build manifest.", "files", paths)

	var localAttrs []hcl.Attributes
	var targets []*targetBlock
	for _, p := range paths {
		file, diags := l.parser.ParseHCLFile(p)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", p, diags)
		}

		var schema fileSchema
		if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
			return nil, fmt.Errorf("invalid manifest structure in %s: %w", p, diags)
		}
		for _, lb := range schema.Locals {
			attrs, diags := lb.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid locals block in %s: %w", p, diags)
			}
			localAttrs = append(localAttrs, attrs)
		}
		targets = append(targets, schema.Targets...)
	}

	locals, err := evalLocals(localAttrs)
	if err != nil {
		return nil, err
	}

	pipeline := &Pipeline{
		Locals:  locals,
		Targets: make(map[string]*Target, len(targets)),
	}
	evalCtx := pipeline.EvalContext()

	for _, tb := range targets {
		var body targetBody
		if diags := gohcl.DecodeBody(tb.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("invalid target %q: %w", tb.Name, diags)
		}
		if _, exists := pipeline.Targets[tb.Name]; exists {
			return nil, fmt.Errorf("duplicate target %q", tb.Name)
		}
		if body.Arguments != nil && body.Uses == "" {
			return nil, fmt.Errorf("target %q has an arguments block but no 'uses' step type", tb.Name)
		}

		target := &Target{
			Name:      tb.Name,
			Uses:      body.Uses,
			Sources:   body.Sources,
			Outputs:   body.Outputs,
			DependsOn: body.DependsOn,
		}
		if body.Arguments != nil {
			target.Arguments = body.Arguments.Body
		}
		pipeline.Targets[tb.Name] = target
		pipeline.Order = append(pipeline.Order, tb.Name)
	}

	logger.Debug("Manifest loaded.", "targets", len(pipeline.Targets), "locals", len(pipeline.Locals))
	return pipeline, nil
}

// resolvePaths expands a file-or-directory path into the list of manifest
// files to parse.
func (l *Loader) resolvePaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("manifest path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("scanning manifest directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found under %s", path)
	}
	return files, nil
}

// evalLocals evaluates all locals attributes, allowing locals to reference
// each other in any declaration order. Evaluation proceeds in passes until a
// fixed point; anything still unresolved then is a genuine error.
func evalLocals(attrSets []hcl.Attributes) (map[string]cty.Value, error) {
	pending := map[string]*hcl.Attribute{}
	for _, attrs := range attrSets {
		for name, attr := range attrs {
			if _, exists := pending[name]; exists {
				return nil, fmt.Errorf("duplicate local %q", name)
			}
			pending[name] = attr
		}
	}

	locals := make(map[string]cty.Value, len(pending))
	for len(pending) > 0 {
		progress := false
		var lastDiags hcl.Diagnostics
		for name, attr := range pending {
			evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
			if len(locals) > 0 {
				evalCtx.Variables["local"] = cty.ObjectVal(locals)
			}
			val, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				lastDiags = diags
				continue
			}
			locals[name] = val
			delete(pending, name)
			progress = true
		}
		if !progress {
			return nil, fmt.Errorf("unresolvable locals (cyclic or undefined reference): %w", lastDiags)
		}
	}
	return locals, nil
}
