package extbuild

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eugo-inc/brotli/internal/ctxlog"
)

// VersionHeader locates the header the package version is read from.
type VersionHeader struct {
	Path  string
	Major string // macro names
	Minor string
	Patch string
}

// Project is the static configuration supplied by the packaging layer.
type Project struct {
	Name          string
	VersionHeader VersionHeader
	Requirements  []LibraryRequirement
	Extensions    []BuildTarget
}

// Coordinator wires resolution and building: it resolves the project's
// libraries once, then hands the frozen flags to an ExtensionStep.
type Coordinator struct {
	Registry Registry
	Compiler Compiler
	Config   *BuildConfig

	configured bool
	flags      ResolvedLibraryFlags
}

// NewCoordinator returns a coordinator for the given collaborators.
func NewCoordinator(registry Registry, compiler Compiler, config *BuildConfig) *Coordinator {
	return &Coordinator{Registry: registry, Compiler: compiler, Config: config}
}

// Preflight checks that the registry and compiler tools are installed.
// Collaborators that do not implement ToolChecker are skipped.
func (c *Coordinator) Preflight() error {
	var problems []string
	for _, component := range []any{c.Registry, c.Compiler} {
		checker, ok := component.(ToolChecker)
		if !ok {
			continue
		}
		if err := checker.CheckTools(); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("build tools missing: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Version returns the project version read from its version header, or ""
// when the header does not define all three macros.
func (c *Coordinator) Version(project *Project) (string, error) {
	h := project.VersionHeader
	return ExtractVersion(h.Path, h.Major, h.Minor, h.Patch)
}

// Configure resolves the project's requirements. Resolution runs at most
// once per Coordinator; later calls return the same flags.
func (c *Coordinator) Configure(ctx context.Context, project *Project) (ResolvedLibraryFlags, error) {
	if c.configured {
		return c.flags, nil
	}

	flags, err := Resolve(ctx, c.Registry, project.Requirements)
	if err != nil {
		return ResolvedLibraryFlags{}, err
	}

	c.flags = flags
	c.configured = true
	ctxlog.FromContext(ctx).Debug("Configured libraries.",
		"include_dirs", flags.IncludeDirs(),
		"library_dirs", flags.LibraryDirs(),
		"libraries", flags.Libraries())
	return flags, nil
}

// ExtensionStep returns the build step for the project's extensions.
// Configure must have succeeded first.
func (c *Coordinator) ExtensionStep(project *Project) (*ExtensionStep, error) {
	if !c.configured {
		return nil, errors.New("extension step requested before libraries were resolved")
	}

	targets := make([]*BuildTarget, 0, len(project.Extensions))
	for i := range project.Extensions {
		targets = append(targets, &project.Extensions[i])
	}

	return &ExtensionStep{
		Builder: NewExtensionBuilder(c.Config, c.Compiler),
		Targets: targets,
		Flags:   c.flags,
	}, nil
}

// Build resolves the libraries, plugs the extension step into pipeline
// (replacing a framework step of the same name, or appending) and runs it.
// A nil pipeline runs the extension step alone.
func (c *Coordinator) Build(ctx context.Context, project *Project, pipeline *Pipeline) ([]*BuildResult, error) {
	if _, err := c.Configure(ctx, project); err != nil {
		return nil, err
	}

	step, err := c.ExtensionStep(project)
	if err != nil {
		return nil, err
	}

	if pipeline == nil {
		pipeline = &Pipeline{}
	}
	if _, ok := pipeline.Lookup(step.Name()); ok {
		err = pipeline.Replace(step)
	} else {
		err = pipeline.Register(step)
	}
	if err != nil {
		return nil, err
	}

	err = pipeline.Run(ctx)
	return step.Results(), err
}
