// Package config loads brotli-build project files.
//
// A project file is YAML (brotli-build.yaml) or HCL (brotli-build.hcl). Both
// decode into the same Project, which ToExtbuild turns into the types the
// build uses.
package config

// Project is the root of a project file.
type Project struct {
	Name          string            `yaml:"name" hcl:"name,optional"`
	VersionHeader *VersionHeader    `yaml:"version_header" hcl:"version_header,block"`
	Build         *BuildSection     `yaml:"build" hcl:"build,block"`
	PkgConfig     *PkgConfigSection `yaml:"pkg_config" hcl:"pkg_config,block"`
	Log           *LogConfig        `yaml:"log" hcl:"log,block"`
	Requirements  []Requirement     `yaml:"requirements" hcl:"requirement,block"`
	Extensions    []Extension       `yaml:"extensions" hcl:"extension,block"`
}

// VersionHeader names the header and the macros the version is read from.
// Empty macro names default to BROTLI_VERSION_MAJOR/MINOR/PATCH.
type VersionHeader struct {
	Path  string `yaml:"path" hcl:"path"`
	Major string `yaml:"major" hcl:"major,optional"`
	Minor string `yaml:"minor" hcl:"minor,optional"`
	Patch string `yaml:"patch" hcl:"patch,optional"`
}

// BuildSection holds output locations and build switches.
type BuildSection struct {
	BuildTemp  string `yaml:"build_temp" hcl:"build_temp,optional"`
	BuildLib   string `yaml:"build_lib" hcl:"build_lib,optional"`
	ExtSuffix  string `yaml:"ext_suffix" hcl:"ext_suffix,optional"`
	PackageDir string `yaml:"package_dir" hcl:"package_dir,optional"`
	Compiler   string `yaml:"compiler" hcl:"compiler,optional"` // unix, mingw32 or msvc; detected when empty
	Force      bool   `yaml:"force" hcl:"force,optional"`
	Debug      bool   `yaml:"debug" hcl:"debug,optional"`
	Inplace    bool   `yaml:"inplace" hcl:"inplace,optional"`
}

// PkgConfigSection configures the pkg-config registry.
type PkgConfigSection struct {
	Path       string   `yaml:"path" hcl:"path,optional"`
	SearchPath []string `yaml:"search_path" hcl:"search_path,optional"`
}

// LogConfig selects the log level (debug, info, warn, error) and format (text, json).
type LogConfig struct {
	Level  string `yaml:"level" hcl:"level,optional"`
	Format string `yaml:"format" hcl:"format,optional"`
}

// Requirement is one library that must be installed.
//
//	requirement "libbrotlicommon" {
//	  constraint = "= 1.1.0"
//	}
type Requirement struct {
	Name       string `yaml:"name" hcl:"name,label"`
	Constraint string `yaml:"constraint" hcl:"constraint,optional"`
}

// Extension declares one native extension module. Macros are written
// "NAME" or "NAME=VALUE".
type Extension struct {
	Name               string   `yaml:"name" hcl:"name,label"`
	Sources            []string `yaml:"sources" hcl:"sources"`
	Depends            []string `yaml:"depends" hcl:"depends,optional"`
	IncludeDirs        []string `yaml:"include_dirs" hcl:"include_dirs,optional"`
	LibraryDirs        []string `yaml:"library_dirs" hcl:"library_dirs,optional"`
	RuntimeLibraryDirs []string `yaml:"runtime_library_dirs" hcl:"runtime_library_dirs,optional"`
	Libraries          []string `yaml:"libraries" hcl:"libraries,optional"`
	DefineMacros       []string `yaml:"define_macros" hcl:"define_macros,optional"`
	UndefMacros        []string `yaml:"undef_macros" hcl:"undef_macros,optional"`
	ExtraCompileArgs   []string `yaml:"extra_compile_args" hcl:"extra_compile_args,optional"`
	ExtraLinkArgs      []string `yaml:"extra_link_args" hcl:"extra_link_args,optional"`
	ExtraObjects       []string `yaml:"extra_objects" hcl:"extra_objects,optional"`
	ExportSymbols      []string `yaml:"export_symbols" hcl:"export_symbols,optional"`
	Language           string   `yaml:"language" hcl:"language,optional"`
}
