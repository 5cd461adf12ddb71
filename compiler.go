package extbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// CompileRequest is one batch compiler invocation.
type CompileRequest struct {
	Sources     []string
	OutputDir   string // objects are written under this directory
	Macros      []Macro
	IncludeDirs []string
	ExtraArgs   []string // appended after every other argument
	Depends     []string
	Debug       bool
}

// LinkRequest is one shared-object link.
type LinkRequest struct {
	Objects            []string
	OutputPath         string
	Libraries          []string
	LibraryDirs        []string
	RuntimeLibraryDirs []string
	ExtraArgs          []string
	ExportSymbols      []string
	BuildTemp          string
	TargetLang         string
	Debug              bool
}

// Compiler drives a native toolchain. Implementations shell out to an
// existing compiler; they do not compile anything themselves.
type Compiler interface {
	// Type returns the compiler family (CompilerUnix, CompilerMinGW, CompilerMSVC).
	Type() string

	// Compile compiles every source and returns the object paths in source
	// order. Output lines are appended to output even on failure.
	Compile(ctx context.Context, req CompileRequest, output *[]string) ([]string, error)

	// LinkSharedObject links req.Objects into req.OutputPath.
	LinkSharedObject(ctx context.Context, req LinkRequest, output *[]string) error

	// DetectLanguage returns the link language for a set of sources.
	DetectLanguage(sources []string) string
}

// Languages understood by the link step.
const (
	LangC    = "c"
	LangCXX  = "c++"
	LangObjC = "objc"
)

var languageBySuffix = map[string]string{
	".c":   LangC,
	".cc":  LangCXX,
	".cpp": LangCXX,
	".cxx": LangCXX,
	".c++": LangCXX,
	".m":   LangObjC,
}

// languageOrder ranks languages for the link driver: any C++ source
// requires the C++ driver.
var languageOrder = []string{LangCXX, LangObjC, LangC}

// IsNativeSource reports whether path is a source file the compiler accepts.
func IsNativeSource(path string) bool {
	_, ok := languageBySuffix[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DetectLanguage returns the highest-ranked language among sources, or ""
// when none is recognized.
func DetectLanguage(sources []string) string {
	best := len(languageOrder)
	for _, src := range sources {
		lang, ok := languageBySuffix[strings.ToLower(filepath.Ext(src))]
		if !ok {
			continue
		}
		for i, l := range languageOrder {
			if l == lang && i < best {
				best = i
			}
		}
	}
	if best == len(languageOrder) {
		return ""
	}
	return languageOrder[best]
}

// ObjectFileName maps a source to its object path under outputDir,
// mirroring the source's relative directory so equal base names in
// different directories do not collide.
func ObjectFileName(source, outputDir, objExt string) string {
	rel := filepath.Clean(source)
	if filepath.IsAbs(rel) {
		rel = strings.TrimPrefix(rel, filepath.VolumeName(rel))
		rel = strings.TrimLeft(rel, `/\`)
	}
	for strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = rel[3:]
	}
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputDir, base+objExt)
}

// NewCompiler returns the driver for a compiler family.
func NewCompiler(compilerType string) (Compiler, error) {
	switch compilerType {
	case "", CompilerUnix:
		return NewUnixCompiler(CompilerUnix), nil
	case CompilerMinGW:
		return NewUnixCompiler(CompilerMinGW), nil
	case CompilerMSVC:
		return NewMSVCCompiler(), nil
	default:
		return nil, fmt.Errorf("unsupported compiler type: %s", compilerType)
	}
}
