package extbuild

import (
	"path/filepath"
	"runtime"
	"strings"
)

// BuildTarget describes one native extension module.
//
// Merge order when the target is built: resolved library flags first, then
// the fields declared here, then platform additions made by the builder.
type BuildTarget struct {
	// Name is the dotted module name, e.g. "_brotli" or "pkg.sub._ext".
	Name string

	// Sources are the files to compile, in order. Only recognized native
	// sources are handed to the compiler.
	Sources []string

	// Depends are extra files (usually headers) whose modification time
	// also invalidates the artifact.
	Depends []string

	IncludeDirs        []string
	LibraryDirs        []string
	RuntimeLibraryDirs []string
	Libraries          []string // appended after the resolved library names
	DefineMacros       []Macro
	UndefMacros        []string
	ExtraCompileArgs   []string
	ExtraLinkArgs      []string
	ExtraObjects       []string // pre-built objects added to the link
	ExportSymbols      []string

	// Language forces the link driver ("c", "c++", "objc"). Detected from
	// the compiled sources when empty.
	Language string
}

// SourceFiles returns the sources followed by the declared dependencies.
func (t *BuildTarget) SourceFiles() []string {
	files := make([]string, 0, len(t.Sources)+len(t.Depends))
	files = append(files, t.Sources...)
	files = append(files, t.Depends...)
	return files
}

// BuildState is a step of a single build invocation.
//
//	NotStarted -> Validated -> UpToDate
//	                        -> Compiling -> Compiled -> Linking -> Linked
//
// Validated, Compiling and Linking may move to Failed. UpToDate, Linked and
// Failed are terminal.
type BuildState int

const (
	StateNotStarted BuildState = iota
	StateValidated
	StateUpToDate
	StateCompiling
	StateCompiled
	StateLinking
	StateLinked
	StateFailed
)

var buildStateNames = [...]string{
	StateNotStarted: "not-started",
	StateValidated:  "validated",
	StateUpToDate:   "up-to-date",
	StateCompiling:  "compiling",
	StateCompiled:   "compiled",
	StateLinking:    "linking",
	StateLinked:     "linked",
	StateFailed:     "failed",
}

func (s BuildState) String() string {
	if s < 0 || int(s) >= len(buildStateNames) {
		return "unknown"
	}
	return buildStateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s BuildState) Terminal() bool {
	return s == StateUpToDate || s == StateLinked || s == StateFailed
}

// BuildResult contains the output and status of a build operation.
type BuildResult struct {
	Target   string     // Extension name
	Artifact string     // Path of the shared object
	State    BuildState // Terminal state reached
	Objects  []string   // Object files produced by this invocation
	Output   []string   // Lines captured from the compiler and linker
	Error    error      // Error if the build failed, nil otherwise
}

// Success reports whether the artifact is current.
func (r *BuildResult) Success() bool {
	return r != nil && r.Error == nil && (r.State == StateLinked || r.State == StateUpToDate)
}

// Platform system names as reported by PlatformInfo.System.
const (
	SystemDarwin  = "Darwin"
	SystemLinux   = "Linux"
	SystemWindows = "Windows"
)

// Compiler families.
const (
	CompilerUnix  = "unix"
	CompilerMinGW = "mingw32"
	CompilerMSVC  = "msvc"
)

// PlatformInfo identifies the host the extension is built for.
type PlatformInfo struct {
	System       string // SystemDarwin, SystemLinux, SystemWindows, or another uname-style name
	CompilerType string // CompilerUnix, CompilerMinGW or CompilerMSVC
}

// DetectPlatform describes the running host. On Windows the compiler family
// is MinGW when $CC names gcc or clang, MSVC otherwise.
func DetectPlatform() PlatformInfo {
	info := PlatformInfo{CompilerType: CompilerUnix}

	switch runtime.GOOS {
	case "darwin":
		info.System = SystemDarwin
	case "linux":
		info.System = SystemLinux
	case "windows":
		info.System = SystemWindows
		info.CompilerType = CompilerMSVC
		if cc := strings.ToLower(filepath.Base(envOr("CC", ""))); strings.Contains(cc, "gcc") || strings.Contains(cc, "clang") {
			info.CompilerType = CompilerMinGW
		}
	default:
		if runtime.GOOS != "" {
			info.System = strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
		}
	}

	return info
}

// BuildConfig contains configuration for the build process.
type BuildConfig struct {
	// BuildTemp holds object files.
	BuildTemp string

	// BuildLib is the root the artifact is written under.
	BuildLib string

	// ExtSuffix is appended to the module path, e.g. ".so" or
	// ".cpython-312-x86_64-linux-gnu.so". Defaults per platform.
	ExtSuffix string

	// Force rebuilds even when the artifact is newer than every input.
	Force bool

	// Debug compiles with debug information.
	Debug bool

	// Inplace copies the artifact into PackageDir after linking.
	Inplace bool

	// PackageDir is the source-tree root for in-place copies. Defaults to ".".
	PackageDir string

	// Platform selects the platform-conditional macros and link flags.
	// DetectPlatform() is used when zero.
	Platform PlatformInfo
}

// DefaultExtSuffix returns the shared-object suffix for a platform.
func DefaultExtSuffix(p PlatformInfo) string {
	if p.System == SystemWindows {
		return ".pyd"
	}
	return ".so"
}

// ExtFullPath returns the artifact path for a dotted module name:
// each dot becomes a directory under BuildLib.
func (c *BuildConfig) ExtFullPath(name string) string {
	parts := strings.Split(name, ".")
	parts[len(parts)-1] += c.extSuffix()
	return filepath.Join(append([]string{c.BuildLib}, parts...)...)
}

func (c *BuildConfig) extSuffix() string {
	if c.ExtSuffix != "" {
		return c.ExtSuffix
	}
	return DefaultExtSuffix(c.platform())
}

func (c *BuildConfig) platform() PlatformInfo {
	if c.Platform == (PlatformInfo{}) {
		return DetectPlatform()
	}
	return c.Platform
}
