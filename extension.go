package extbuild

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/magefile/mage/target"

	"github.com/eugo-inc/brotli/internal/ctxlog"
)

// mingwStaticLinkArgs link the GCC runtime statically so the extension does
// not need extra runtime DLLs next to it.
var mingwStaticLinkArgs = []string{"-static-libgcc", "-static-libstdc++"}

// ExtensionBuilder compiles and links native extension modules.
//
// A build invocation follows the BuildState machine. The builder is
// stateful (it remembers the state reached and the objects produced by the
// last invocation) and is not safe for concurrent use; running two builds
// against the same artifact path at once is unsupported.
type ExtensionBuilder struct {
	Config   *BuildConfig
	Compiler Compiler

	state        BuildState
	builtObjects []string
}

// NewExtensionBuilder returns a builder writing under config's directories.
func NewExtensionBuilder(config *BuildConfig, compiler Compiler) *ExtensionBuilder {
	return &ExtensionBuilder{Config: config, Compiler: compiler}
}

// State returns the state reached by the last Build call.
func (b *ExtensionBuilder) State() BuildState {
	return b.state
}

// BuiltObjects returns the object files produced by the last Build call.
// It is kept for inspection only; nothing else in the build reads it.
func (b *ExtensionBuilder) BuiltObjects() []string {
	return clone(b.builtObjects)
}

// Build brings the artifact for t up to date:
//
//  1. validate the target
//  2. skip everything when the artifact is newer than every source and
//     dependency (and Force is off)
//  3. configure macros: declared defines, then platform defines, then undefines
//  4. compile the native sources into BuildTemp
//  5. link the objects, extra objects and resolved libraries into the artifact
//
// Any failure is final; there is no retry.
func (b *ExtensionBuilder) Build(ctx context.Context, t *BuildTarget, flags ResolvedLibraryFlags) (*BuildResult, error) {
	logger := ctxlog.FromContext(ctx)

	b.state = StateNotStarted
	b.builtObjects = nil

	result := &BuildResult{State: StateNotStarted}
	fail := func(err error) (*BuildResult, error) {
		b.state = StateFailed
		result.State = StateFailed
		result.Error = err
		return result, err
	}

	if t == nil {
		return fail(&MalformedTargetError{Reason: "no build target given"})
	}
	result.Target = t.Name

	sources, err := validateTarget(t)
	if err != nil {
		return fail(err)
	}
	b.transition(result, StateValidated)

	artifact := b.Config.ExtFullPath(t.Name)
	result.Artifact = artifact

	stale, err := b.needsRebuild(t, artifact)
	if err != nil {
		return fail(fmt.Errorf("checking whether %q is up to date: %w", t.Name, err))
	}
	if !stale {
		logger.Debug(fmt.Sprintf("skipping '%s' extension (up-to-date)", t.Name), "artifact", artifact)
		b.transition(result, StateUpToDate)
		return result, nil
	}
	logger.Info(fmt.Sprintf("building '%s' extension", t.Name), "artifact", artifact)

	platform := b.Config.platform()
	macros := ConfigureMacros(t, flags, platform, b.Compiler.Type())

	b.transition(result, StateCompiling)
	objects, err := b.Compiler.Compile(ctx, CompileRequest{
		Sources:     sources,
		OutputDir:   b.Config.BuildTemp,
		Macros:      macros,
		IncludeDirs: uniqueStrings(append(flags.IncludeDirs(), t.IncludeDirs...)),
		ExtraArgs:   append(flags.ExtraCompileArgs(), t.ExtraCompileArgs...),
		Depends:     clone(t.Depends),
		Debug:       b.Config.Debug,
	}, &result.Output)
	if err != nil {
		return fail(&CompileError{Target: t.Name, Err: err})
	}
	b.builtObjects = clone(objects)
	result.Objects = clone(objects)
	b.transition(result, StateCompiled)

	linkObjects := append(clone(objects), t.ExtraObjects...)
	language := t.Language
	if language == "" {
		language = b.Compiler.DetectLanguage(sources)
	}

	b.transition(result, StateLinking)
	err = b.Compiler.LinkSharedObject(ctx, LinkRequest{
		Objects:            linkObjects,
		OutputPath:         artifact,
		Libraries:          append(flags.Libraries(), t.Libraries...),
		LibraryDirs:        uniqueStrings(append(flags.LibraryDirs(), t.LibraryDirs...)),
		RuntimeLibraryDirs: clone(t.RuntimeLibraryDirs),
		ExtraArgs:          linkArgs(t, flags, b.Compiler.Type()),
		ExportSymbols:      clone(t.ExportSymbols),
		BuildTemp:          b.Config.BuildTemp,
		TargetLang:         language,
		Debug:              b.Config.Debug,
	}, &result.Output)
	if err != nil {
		return fail(&LinkError{Target: t.Name, Err: err})
	}
	b.transition(result, StateLinked)

	if b.Config.Inplace {
		dest, err := installInplace(b.Config, t.Name, artifact)
		if err != nil {
			result.Error = fmt.Errorf("copying %q in place: %w", t.Name, err)
			return result, result.Error
		}
		logger.Info("Copied extension in place.", "path", dest)
	}

	return result, nil
}

func (b *ExtensionBuilder) transition(result *BuildResult, next BuildState) {
	b.state = next
	result.State = next
}

// validateTarget returns the recognized native sources of t.
func validateTarget(t *BuildTarget) ([]string, error) {
	if t.Name == "" {
		return nil, &MalformedTargetError{Reason: "extension name is empty"}
	}
	if len(t.Sources) == 0 {
		return nil, &MalformedTargetError{
			Target: t.Name,
			Reason: "'sources' must be present and must be a list of source filenames",
		}
	}

	var native []string
	for _, src := range t.Sources {
		if IsNativeSource(src) {
			native = append(native, src)
		}
	}
	if len(native) == 0 {
		return nil, &MalformedTargetError{
			Target: t.Name,
			Reason: fmt.Sprintf("no native source files among %v", t.Sources),
		}
	}
	return native, nil
}

// needsRebuild compares modification times of sources and depends against
// the artifact. A missing input counts as newer than the artifact.
//
// Timestamps, not content hashes, decide: clock skew or copies that keep
// old timestamps can make a stale artifact look current.
func (b *ExtensionBuilder) needsRebuild(t *BuildTarget, artifact string) (bool, error) {
	if b.Config.Force {
		return true, nil
	}

	inputs := t.SourceFiles()
	for _, in := range inputs {
		if _, err := os.Stat(in); errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
	}

	return target.Path(artifact, inputs...)
}

// ConfigureMacros returns the preprocessor macros for a build, in the order
// they are applied: resolved library defines, the target's defines,
// platform defines, then every undefine. An undefine therefore always wins
// over a define of the same name.
func ConfigureMacros(t *BuildTarget, flags ResolvedLibraryFlags, platform PlatformInfo, compilerType string) []Macro {
	macros := flags.Defines()
	macros = append(macros, t.DefineMacros...)

	switch {
	case platform.System == SystemDarwin:
		macros = append(macros, Define("OS_MACOSX", "1"))
	case compilerType == CompilerMinGW:
		// The host headers may #define hypot as _hypot, which breaks
		// GCC's <cmath>.
		macros = append(macros, Define("_hypot", "hypot"))
	}

	for _, name := range t.UndefMacros {
		macros = append(macros, Undefine(name))
	}
	return macros
}

// linkArgs returns a fresh slice; neither t nor flags is modified.
func linkArgs(t *BuildTarget, flags ResolvedLibraryFlags, compilerType string) []string {
	args := append(flags.ExtraLinkArgs(), t.ExtraLinkArgs...)
	if compilerType == CompilerMinGW {
		args = append(args, mingwStaticLinkArgs...)
	}
	return args
}

// Clean removes the object files of t from BuildTemp and, when all is set,
// the artifact as well. Missing files are not an error.
func (b *ExtensionBuilder) Clean(ctx context.Context, t *BuildTarget, all bool) error {
	logger := ctxlog.FromContext(ctx)

	var paths []string
	for _, src := range t.Sources {
		if !IsNativeSource(src) {
			continue
		}
		paths = append(paths,
			ObjectFileName(src, b.Config.BuildTemp, ".o"),
			ObjectFileName(src, b.Config.BuildTemp, ".obj"))
	}
	if all {
		paths = append(paths, b.Config.ExtFullPath(t.Name))
	}

	for _, p := range paths {
		err := os.Remove(p)
		switch {
		case err == nil:
			logger.Debug("Removed.", "path", p)
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}
