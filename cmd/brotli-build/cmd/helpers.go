package cmd

import (
	"fmt"
	"io"
	"strings"

	extbuild "github.com/eugo-inc/brotli"
	"github.com/eugo-inc/brotli/internal/config"
)

// loadProject reads the project named by --config, a project file found in
// the working directory, or the built-in brotli project.
func loadProject() (*config.Project, error) {
	path := configPath
	if path == "" {
		path = config.Discover(".")
	}
	if path == "" {
		return config.DefaultProject(), nil
	}

	p, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return p, nil
}

// newCoordinator wires the registry, compiler and build configuration of
// the loaded project.
func newCoordinator(p *config.Project) (*extbuild.Coordinator, error) {
	buildConfig := p.BuildConfig()

	compiler, err := extbuild.NewCompiler(buildConfig.Platform.CompilerType)
	if err != nil {
		return nil, err
	}

	return extbuild.NewCoordinator(p.Registry(), compiler, buildConfig), nil
}

// printFlags writes resolved flags one field per line, skipping empty ones.
func printFlags(w io.Writer, flags extbuild.ResolvedLibraryFlags) {
	var defines []string
	for _, m := range flags.Defines() {
		defines = append(defines, m.String())
	}

	fields := []struct {
		name   string
		values []string
	}{
		{"include_dirs", flags.IncludeDirs()},
		{"library_dirs", flags.LibraryDirs()},
		{"libraries", flags.Libraries()},
		{"define_macros", defines},
		{"extra_compile_args", flags.ExtraCompileArgs()},
		{"extra_link_args", flags.ExtraLinkArgs()},
	}
	for _, f := range fields {
		if len(f.values) == 0 {
			continue
		}
		fmt.Fprintf(w, "%-20s %s\n", f.name+":", strings.Join(f.values, " "))
	}
}
