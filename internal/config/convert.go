package config

import (
	"strings"

	extbuild "github.com/eugo-inc/brotli"
)

// ToExtbuild converts a loaded project into the build's project model.
func (p *Project) ToExtbuild() *extbuild.Project {
	out := &extbuild.Project{Name: p.Name}

	if p.VersionHeader != nil {
		out.VersionHeader = extbuild.VersionHeader{
			Path:  p.VersionHeader.Path,
			Major: p.VersionHeader.Major,
			Minor: p.VersionHeader.Minor,
			Patch: p.VersionHeader.Patch,
		}
	}

	for _, req := range p.Requirements {
		out.Requirements = append(out.Requirements, extbuild.LibraryRequirement{
			Name:       req.Name,
			Constraint: req.Constraint,
		})
	}

	for _, ext := range p.Extensions {
		out.Extensions = append(out.Extensions, ext.toTarget())
	}

	return out
}

func (e Extension) toTarget() extbuild.BuildTarget {
	t := extbuild.BuildTarget{
		Name:               e.Name,
		Sources:            e.Sources,
		Depends:            e.Depends,
		IncludeDirs:        e.IncludeDirs,
		LibraryDirs:        e.LibraryDirs,
		RuntimeLibraryDirs: e.RuntimeLibraryDirs,
		Libraries:          e.Libraries,
		ExtraCompileArgs:   e.ExtraCompileArgs,
		ExtraLinkArgs:      e.ExtraLinkArgs,
		ExtraObjects:       e.ExtraObjects,
		ExportSymbols:      e.ExportSymbols,
		Language:           e.Language,
	}

	for _, m := range e.DefineMacros {
		name, value, _ := strings.Cut(m, "=")
		t.DefineMacros = append(t.DefineMacros, extbuild.Define(strings.TrimSpace(name), strings.TrimSpace(value)))
	}
	for _, name := range e.UndefMacros {
		t.UndefMacros = append(t.UndefMacros, strings.TrimSpace(name))
	}

	return t
}

// BuildConfig returns the build configuration of the project. The
// platform is detected, with the compiler family overridden when the
// project names one.
func (p *Project) BuildConfig() *extbuild.BuildConfig {
	b := p.Build
	if b == nil {
		b = &BuildSection{BuildTemp: DefaultBuildTemp, BuildLib: DefaultBuildLib}
	}

	platform := extbuild.DetectPlatform()
	if b.Compiler != "" {
		platform.CompilerType = b.Compiler
	}

	return &extbuild.BuildConfig{
		BuildTemp:  b.BuildTemp,
		BuildLib:   b.BuildLib,
		ExtSuffix:  b.ExtSuffix,
		Force:      b.Force,
		Debug:      b.Debug,
		Inplace:    b.Inplace,
		PackageDir: b.PackageDir,
		Platform:   platform,
	}
}

// Registry returns the pkg-config registry configured by the project.
func (p *Project) Registry() *extbuild.PkgConfig {
	registry := extbuild.NewPkgConfig()
	if p.PkgConfig != nil {
		registry.Path = p.PkgConfig.Path
		registry.SearchPath = append([]string(nil), p.PkgConfig.SearchPath...)
	}
	return registry
}
