package extbuild

import (
	"context"
	"fmt"

	"github.com/eugo-inc/brotli/internal/ctxlog"
)

// Resolve checks every requirement against the registry, in order, and
// returns the merged compile and link flags.
//
// For each requirement:
//  1. the library must exist, or a *MissingDependencyError is returned
//  2. its installed version is read
//  3. the version must satisfy the constraint, or a *VersionMismatchError
//     naming the library, the installed version and the constraint is returned
//  4. its flags are appended to the accumulator
//
// Resolution stops at the first failure; flags of later libraries are never
// queried. Resolution runs once, before anything is compiled, so a missing
// system library is reported by name instead of as a compiler error.
func Resolve(ctx context.Context, registry Registry, requirements []LibraryRequirement) (ResolvedLibraryFlags, error) {
	logger := ctxlog.FromContext(ctx)

	var resolved ResolvedLibraryFlags
	for _, req := range requirements {
		exists, err := registry.Exists(ctx, req.Name)
		if err != nil {
			return ResolvedLibraryFlags{}, fmt.Errorf("querying library %s: %w", req.Name, err)
		}
		if !exists {
			return ResolvedLibraryFlags{}, &MissingDependencyError{Library: req.Name}
		}

		version, err := registry.Version(ctx, req.Name)
		if err != nil {
			return ResolvedLibraryFlags{}, fmt.Errorf("querying version of %s: %w", req.Name, err)
		}

		installed, err := registry.Installed(ctx, req.Name, req.Constraint)
		if err != nil {
			return ResolvedLibraryFlags{}, fmt.Errorf("checking %s: %w", req, err)
		}
		if !installed {
			return ResolvedLibraryFlags{}, &VersionMismatchError{
				Library:    req.Name,
				Installed:  version,
				Constraint: req.Constraint,
			}
		}

		flags, err := registry.Flags(ctx, req.Name)
		if err != nil {
			return ResolvedLibraryFlags{}, fmt.Errorf("querying flags of %s: %w", req.Name, err)
		}

		logger.Debug("Resolved library.", "library", req.Name, "version", version, "constraint", req.Constraint)
		resolved = resolved.merge(flags)
	}

	return resolved, nil
}
