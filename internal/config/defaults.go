package config

import (
	extbuild "github.com/eugo-inc/brotli"
)

// BrotliRequiredVersion pins the brotli C libraries to the commit the
// bindings are built against.
const BrotliRequiredVersion = "= d01a4caaa80c0072fe1b6bf073814b9400667fcc"

// BrotliLibraries are the pkg-config modules the bindings link against,
// in resolution order.
var BrotliLibraries = []string{"libbrotlidec", "libbrotlienc", "libbrotlicommon", "libbrotli"}

// DefaultProject describes the brotli bindings when no project file is
// given. Paths are relative to the repository root.
func DefaultProject() *Project {
	requirements := make([]Requirement, 0, len(BrotliLibraries))
	for _, lib := range BrotliLibraries {
		requirements = append(requirements, Requirement{Name: lib, Constraint: BrotliRequiredVersion})
	}

	p := &Project{
		Name: "Brotli",
		VersionHeader: &VersionHeader{
			Path:  "c/common/version.h",
			Major: extbuild.VersionMajorMacro,
			Minor: extbuild.VersionMinorMacro,
			Patch: extbuild.VersionPatchMacro,
		},
		Build: &BuildSection{
			PackageDir: "python",
		},
		Requirements: requirements,
		Extensions: []Extension{
			{
				Name:    "_brotli",
				Sources: []string{"python/_brotli.c"},
			},
		},
	}
	ApplyDefaults(p)
	return p
}
