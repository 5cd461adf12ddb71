package extbuild

import (
	"slices"
	"strings"
)

// LibraryRequirement names a system library and the version it must satisfy.
type LibraryRequirement struct {
	Name       string // pkg-config module name, e.g. "libbrotlidec"
	Constraint string // e.g. ">= 1.0.9" or "= d01a4caaa80c0072fe1b6bf073814b9400667fcc"
}

func (r LibraryRequirement) String() string {
	if r.Constraint == "" {
		return r.Name
	}
	return r.Name + " " + r.Constraint
}

// Macro is a preprocessor definition (-DNAME[=VALUE]) or, with Undef set,
// an undefinition (-UNAME).
type Macro struct {
	Name  string
	Value string
	Undef bool
}

// Define returns a defining macro.
func Define(name, value string) Macro {
	return Macro{Name: name, Value: value}
}

// Undefine returns an undefining macro.
func Undefine(name string) Macro {
	return Macro{Name: name, Undef: true}
}

func (m Macro) String() string {
	switch {
	case m.Undef:
		return "-U" + m.Name
	case m.Value == "":
		return "-D" + m.Name
	default:
		return "-D" + m.Name + "=" + m.Value
	}
}

// parseMacro splits "NAME=VALUE" as found after -D.
func parseMacro(s string) Macro {
	name, value, _ := strings.Cut(s, "=")
	return Macro{Name: name, Value: value}
}

// LibraryFlags are the compiler and linker inputs reported for one library.
type LibraryFlags struct {
	IncludeDirs      []string
	LibraryDirs      []string
	Libraries        []string
	Defines          []Macro
	ExtraCompileArgs []string
	ExtraLinkArgs    []string
}

// ResolvedLibraryFlags is the frozen accumulation of every requirement's
// LibraryFlags, in requirement order. The zero value is empty and usable.
// Accessors return copies; nothing can change a value once built.
type ResolvedLibraryFlags struct {
	includeDirs      []string
	libraryDirs      []string
	libraries        []string
	defines          []Macro
	extraCompileArgs []string
	extraLinkArgs    []string
}

// NewResolvedLibraryFlags merges parts in order.
func NewResolvedLibraryFlags(parts ...LibraryFlags) ResolvedLibraryFlags {
	var r ResolvedLibraryFlags
	for _, p := range parts {
		r = r.merge(p)
	}
	return r
}

// merge returns a new value with f appended. Search directories and defines
// keep their first occurrence; library names keep every occurrence because
// link order can require a library twice.
func (r ResolvedLibraryFlags) merge(f LibraryFlags) ResolvedLibraryFlags {
	return ResolvedLibraryFlags{
		includeDirs:      appendUnique(clone(r.includeDirs), f.IncludeDirs...),
		libraryDirs:      appendUnique(clone(r.libraryDirs), f.LibraryDirs...),
		libraries:        append(clone(r.libraries), f.Libraries...),
		defines:          appendUniqueMacros(cloneMacros(r.defines), f.Defines...),
		extraCompileArgs: append(clone(r.extraCompileArgs), f.ExtraCompileArgs...),
		extraLinkArgs:    append(clone(r.extraLinkArgs), f.ExtraLinkArgs...),
	}
}

func (r ResolvedLibraryFlags) IncludeDirs() []string      { return clone(r.includeDirs) }
func (r ResolvedLibraryFlags) LibraryDirs() []string      { return clone(r.libraryDirs) }
func (r ResolvedLibraryFlags) Libraries() []string        { return clone(r.libraries) }
func (r ResolvedLibraryFlags) Defines() []Macro           { return cloneMacros(r.defines) }
func (r ResolvedLibraryFlags) ExtraCompileArgs() []string { return clone(r.extraCompileArgs) }
func (r ResolvedLibraryFlags) ExtraLinkArgs() []string    { return clone(r.extraLinkArgs) }

// IsEmpty reports whether nothing was resolved.
func (r ResolvedLibraryFlags) IsEmpty() bool {
	return len(r.includeDirs) == 0 && len(r.libraryDirs) == 0 && len(r.libraries) == 0 &&
		len(r.defines) == 0 && len(r.extraCompileArgs) == 0 && len(r.extraLinkArgs) == 0
}

func clone(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneMacros(s []Macro) []Macro {
	if len(s) == 0 {
		return nil
	}
	return append([]Macro(nil), s...)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" || slices.Contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

func appendUniqueMacros(dst []Macro, values ...Macro) []Macro {
	for _, m := range values {
		if !slices.Contains(dst, m) {
			dst = append(dst, m)
		}
	}
	return dst
}
