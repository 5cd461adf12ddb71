// Package extbuild builds the native extension modules of the brotli
// package against an installed copy of the brotli C libraries.
//
// The package plugs into a packaging framework's build pipeline in place
// of its stock extension step. It never builds the C library itself: the
// common, decoder and encoder libraries must already be installed and
// discoverable through pkg-config.
//
// # Components
//
//   - ExtractVersion reads the package version from the BROTLI_VERSION_*
//     macros of a C header.
//   - Resolve checks every LibraryRequirement against a Registry (PkgConfig
//     by default) and merges the compile and link flags of all libraries.
//   - ExtensionBuilder compiles and links one BuildTarget, skipping the work
//     when the artifact is newer than every source and dependency.
//   - Coordinator resolves the libraries once and runs an ExtensionStep in
//     a Pipeline.
//
// # Basic Usage
//
//	registry := extbuild.NewPkgConfig()
//	compiler, _ := extbuild.NewCompiler(extbuild.DetectPlatform().CompilerType)
//
//	coord := extbuild.NewCoordinator(registry, compiler, &extbuild.BuildConfig{
//	    BuildTemp: "build/temp",
//	    BuildLib:  "build/lib",
//	})
//
//	results, err := coord.Build(ctx, project, nil)
//
// # Errors
//
// Resolution fails with MissingDependencyError or VersionMismatchError,
// building with MalformedTargetError, CompileError or LinkError. Each
// matches its sentinel through errors.Is, e.g. ErrMissingDependency.
//
// # Platform Support
//
// Unix-like hosts use the cc/c++ drivers. On Windows, MSVC is used unless
// $CC names a MinGW gcc or clang.
package extbuild
