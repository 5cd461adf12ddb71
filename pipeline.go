package extbuild

import (
	"context"
	"fmt"
)

// Step is one phase of a package build pipeline.
//
// The packaging framework owns the pipeline and its other steps; this
// package contributes ExtensionStep, which compiles the native extensions.
//
//	type copySources struct{}
//
//	func (copySources) Name() string { return "build_py" }
//
//	func (copySources) Run(ctx context.Context) error {
//	    // copy pure sources into the build tree
//	    return nil
//	}
type Step interface {
	// Name identifies the step, e.g. "build_ext". Names are unique within a pipeline.
	Name() string

	// Run performs the step, blocking until it finishes.
	Run(ctx context.Context) error
}

// Pipeline runs registered steps in order and stops at the first failure.
//
// Registration is not thread-safe. Register every step before Run.
type Pipeline struct {
	steps []Step
}

// Register appends a step. A step whose name is already registered is rejected.
func (p *Pipeline) Register(step Step) error {
	if p.index(step.Name()) >= 0 {
		return fmt.Errorf("step %q already registered", step.Name())
	}
	p.steps = append(p.steps, step)
	return nil
}

// Replace swaps the step registered under step.Name() for step, keeping
// its position. This is how a custom extension builder is plugged into a
// framework-supplied pipeline.
func (p *Pipeline) Replace(step Step) error {
	i := p.index(step.Name())
	if i < 0 {
		return fmt.Errorf("no step named %q", step.Name())
	}
	p.steps[i] = step
	return nil
}

// Lookup returns the step registered under name.
func (p *Pipeline) Lookup(name string) (Step, bool) {
	i := p.index(name)
	if i < 0 {
		return nil, false
	}
	return p.steps[i], true
}

// Steps returns a copy of the registered steps in run order.
func (p *Pipeline) Steps() []Step {
	return append([]Step{}, p.steps...)
}

// Run executes every step in order. The first error aborts the pipeline
// and is returned wrapped with the step name.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

func (p *Pipeline) index(name string) int {
	for i, s := range p.steps {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

// ExtensionStepName is the pipeline name of ExtensionStep.
const ExtensionStepName = "build_ext"

// ExtensionStep adapts an ExtensionBuilder to a pipeline Step. It builds
// every target once, in order, with the same frozen library flags.
type ExtensionStep struct {
	Builder *ExtensionBuilder
	Targets []*BuildTarget
	Flags   ResolvedLibraryFlags

	results []*BuildResult
}

// Name returns ExtensionStepName.
func (s *ExtensionStep) Name() string { return ExtensionStepName }

// Run builds each target and stops at the first failure.
func (s *ExtensionStep) Run(ctx context.Context) error {
	s.results = nil
	for _, t := range s.Targets {
		result, err := s.Builder.Build(ctx, t, s.Flags)
		if result != nil {
			s.results = append(s.results, result)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Results returns the result of every target processed by the last Run.
func (s *ExtensionStep) Results() []*BuildResult {
	return append([]*BuildResult{}, s.results...)
}

// SourceFiles lists the sources and depends of every target.
func (s *ExtensionStep) SourceFiles() []string {
	var files []string
	for _, t := range s.Targets {
		files = append(files, t.SourceFiles()...)
	}
	return files
}
