package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	extbuild "github.com/eugo-inc/brotli"
)

// DefaultFileNames are tried in order by Discover.
var DefaultFileNames = []string{"brotli-build.yaml", "brotli-build.yml", "brotli-build.hcl"}

// Default build directories, relative to the working directory.
const (
	DefaultBuildTemp = "build/temp"
	DefaultBuildLib  = "build/lib"
)

// Load reads, defaults and validates a project file. Files ending in .hcl
// are decoded as HCL, everything else as YAML.
func Load(path string) (*Project, error) {
	var (
		project *Project
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		project, err = decodeHCL(path)
	} else {
		project, err = decodeYAML(path)
	}
	if err != nil {
		return nil, err
	}

	ApplyDefaults(project)
	if errs := Validate(project); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return project, nil
}

// Discover returns the first default project file present in dir, or ""
// when there is none.
func Discover(dir string) string {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func decodeYAML(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var project Project
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &project, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ApplyDefaults fills unset optional sections in place.
func ApplyDefaults(p *Project) {
	if p.VersionHeader != nil {
		if p.VersionHeader.Major == "" {
			p.VersionHeader.Major = extbuild.VersionMajorMacro
		}
		if p.VersionHeader.Minor == "" {
			p.VersionHeader.Minor = extbuild.VersionMinorMacro
		}
		if p.VersionHeader.Patch == "" {
			p.VersionHeader.Patch = extbuild.VersionPatchMacro
		}
	}

	if p.Build == nil {
		p.Build = &BuildSection{}
	}
	if p.Build.BuildTemp == "" {
		p.Build.BuildTemp = DefaultBuildTemp
	}
	if p.Build.BuildLib == "" {
		p.Build.BuildLib = DefaultBuildLib
	}

	if p.PkgConfig == nil {
		p.PkgConfig = &PkgConfigSection{}
	}

	if p.Log == nil {
		p.Log = &LogConfig{}
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Log.Format == "" {
		p.Log.Format = "text"
	}
}

// Validate checks a Project for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(p *Project) []string {
	var errs []string

	if p.VersionHeader != nil && p.VersionHeader.Path == "" {
		errs = append(errs, "version_header: 'path' is required")
	}

	if p.Build != nil {
		switch p.Build.Compiler {
		case "", extbuild.CompilerUnix, extbuild.CompilerMinGW, extbuild.CompilerMSVC:
		default:
			errs = append(errs, fmt.Sprintf("build: invalid compiler '%s' (must be one of: unix, mingw32, msvc)", p.Build.Compiler))
		}
	}

	if p.Log != nil {
		switch p.Log.Level {
		case "", "debug", "info", "warn", "error":
		default:
			errs = append(errs, fmt.Sprintf("log: invalid level '%s' (must be one of: debug, info, warn, error)", p.Log.Level))
		}
		switch p.Log.Format {
		case "", "text", "json":
		default:
			errs = append(errs, fmt.Sprintf("log: invalid format '%s' (must be one of: text, json)", p.Log.Format))
		}
	}

	libraries := make(map[string]bool)
	for i, req := range p.Requirements {
		prefix := fmt.Sprintf("requirement[%d]", i)
		if req.Name != "" {
			prefix = fmt.Sprintf("requirement '%s'", req.Name)
		}

		if req.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		} else if libraries[req.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate requirement", prefix))
		} else {
			libraries[req.Name] = true
		}

		if _, err := extbuild.ParseConstraint(req.Constraint); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
		}
	}

	if len(p.Extensions) == 0 {
		errs = append(errs, "at least one extension is required")
	}

	extensions := make(map[string]bool)
	for i, ext := range p.Extensions {
		prefix := fmt.Sprintf("extension[%d]", i)
		if ext.Name != "" {
			prefix = fmt.Sprintf("extension '%s'", ext.Name)
		}

		if ext.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		} else if extensions[ext.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate extension name", prefix))
		} else {
			extensions[ext.Name] = true
		}

		switch ext.Language {
		case "", extbuild.LangC, extbuild.LangCXX, extbuild.LangObjC:
		default:
			errs = append(errs, fmt.Sprintf("%s: invalid language '%s' (must be one of: c, c++, objc)", prefix, ext.Language))
		}

		for _, m := range ext.DefineMacros {
			if name, _, _ := strings.Cut(m, "="); strings.TrimSpace(name) == "" {
				errs = append(errs, fmt.Sprintf("%s: define macro '%s' has no name", prefix, m))
			}
		}
		for _, m := range ext.UndefMacros {
			if strings.TrimSpace(m) == "" {
				errs = append(errs, fmt.Sprintf("%s: empty undef macro", prefix))
			}
		}
	}

	return errs
}
