// Package registry maps the step types a build manifest may reference to the
// Go handlers that implement them.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface a step module implements to register its handlers.
type Module interface {
	Register(r *Registry)
}

// StepContext describes the target a step handler runs on behalf of.
type StepContext struct {
	// Target is the name of the target being executed.
	Target string
	// Outputs are the files the target declared it produces. The executor
	// removes them when the handler returns an error.
	Outputs []string
}

// RegisteredStep holds the compiled Go parts of a step type.
type RegisteredStep struct {
	// NewInput returns a fresh pointer to the handler's argument struct.
	// The executor decodes the target's arguments block into it.
	NewInput func() any
	// Fn executes the step.
	Fn func(ctx context.Context, sc *StepContext, input any) error
}

// Registry holds all registered step types for a single application instance.
type Registry struct {
	steps map[string]*RegisteredStep
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{steps: make(map[string]*RegisteredStep)}
}

// RegisterStep registers a handler under a step type name. Registering the
// same name twice is a programmer error.
func (r *Registry) RegisterStep(name string, step *RegisteredStep) {
	if _, exists := r.steps[name]; exists {
		panic(fmt.Sprintf("step type '%s' already registered", name))
	}
	slog.Debug("Registering step handler.", "type", name)
	r.steps[name] = step
}

// Step looks up the handler for a step type.
func (r *Registry) Step(name string) (*RegisteredStep, bool) {
	s, ok := r.steps[name]
	return s, ok
}

// Types returns the sorted list of registered step type names.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
