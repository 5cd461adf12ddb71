package extbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// UnixCompiler drives gcc-compatible compilers (gcc, clang, cc), including
// MinGW on Windows.
//
// Toolchain commands honour the usual environment overrides: CC, CXX,
// LDSHARED, CFLAGS and LDFLAGS. Each may hold a command with arguments,
// e.g. CC="ccache gcc".
type UnixCompiler struct {
	compilerType string

	CC       []string // C compiler command
	CXX      []string // C++ compiler command
	LDShared []string // shared-object link command; CC -shared when empty
	CFlags   []string // prepended to every compile
	LDFlags  []string // prepended to every link

	// Darwin selects macOS bundle linking.
	Darwin bool
}

// NewUnixCompiler returns a driver configured from the environment.
func NewUnixCompiler(compilerType string) *UnixCompiler {
	if compilerType == "" {
		compilerType = CompilerUnix
	}
	return &UnixCompiler{
		compilerType: compilerType,
		CC:           splitFlags(envOr("CC", "cc")),
		CXX:          splitFlags(envOr("CXX", "c++")),
		LDShared:     splitFlags(os.Getenv("LDSHARED")),
		CFlags:       splitFlags(os.Getenv("CFLAGS")),
		LDFlags:      splitFlags(os.Getenv("LDFLAGS")),
		Darwin:       runtime.GOOS == "darwin",
	}
}

// Type returns the compiler family.
func (c *UnixCompiler) Type() string {
	return c.compilerType
}

// RequiredTools returns the tools this compiler needs.
func (c *UnixCompiler) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:         firstOr(c.CC, "cc"),
			Alternatives: []string{"gcc", "clang"},
			Purpose:      "C compiler for native extensions",
		},
	}
}

// CheckTools verifies that the compiler is available.
func (c *UnixCompiler) CheckTools() error {
	return CheckRequiredTools(c.RequiredTools())
}

// DetectLanguage returns the link language for sources.
func (c *UnixCompiler) DetectLanguage(sources []string) string {
	return DetectLanguage(sources)
}

// Compile runs the compiler once per source.
func (c *UnixCompiler) Compile(ctx context.Context, req CompileRequest, output *[]string) ([]string, error) {
	objects := make([]string, 0, len(req.Sources))

	for _, src := range req.Sources {
		obj := ObjectFileName(src, req.OutputDir, ".o")
		if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
			return nil, fmt.Errorf("creating object directory: %w", err)
		}

		driver := c.CC
		if DetectLanguage([]string{src}) == LangCXX {
			driver = c.CXX
		}
		if len(driver) == 0 {
			return nil, fmt.Errorf("no compiler configured for %s", src)
		}

		args := append([]string{}, driver[1:]...)
		args = append(args, c.CFlags...)
		if req.Debug {
			args = append(args, "-g")
		}
		for _, dir := range req.IncludeDirs {
			args = append(args, "-I"+dir)
		}
		for _, m := range req.Macros {
			args = append(args, m.String())
		}
		args = append(args, "-c", src, "-o", obj)
		args = append(args, req.ExtraArgs...)

		run := runTool(ctx, nil, driver[0], args...)
		*output = append(*output, run.Command)
		*output = append(*output, run.Output()...)
		if run.Err != nil {
			return nil, BuildError("compile "+src, run.Output(), run.Err)
		}

		objects = append(objects, obj)
	}

	return objects, nil
}

// LinkSharedObject links objects into a shared object (a bundle on macOS).
func (c *UnixCompiler) LinkSharedObject(ctx context.Context, req LinkRequest, output *[]string) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	driver, args := c.linkDriver(req.TargetLang)
	if len(driver) == 0 {
		return fmt.Errorf("no linker configured")
	}

	args = append(args, req.Objects...)
	if c.compilerType == CompilerMinGW && len(req.ExportSymbols) > 0 {
		def, err := writeDefFile(req)
		if err != nil {
			return err
		}
		args = append(args, def)
	}
	for _, dir := range req.LibraryDirs {
		args = append(args, "-L"+dir)
	}
	for _, dir := range req.RuntimeLibraryDirs {
		args = append(args, "-Wl,-rpath,"+dir)
	}
	for _, lib := range req.Libraries {
		args = append(args, "-l"+lib)
	}
	if req.Debug {
		args = append(args, "-g")
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, "-o", req.OutputPath)

	cmdArgs := append(append([]string{}, driver[1:]...), args...)
	run := runTool(ctx, nil, driver[0], cmdArgs...)
	*output = append(*output, run.Command)
	*output = append(*output, run.Output()...)
	if run.Err != nil {
		return BuildError("link "+filepath.Base(req.OutputPath), run.Output(), run.Err)
	}

	return nil
}

// linkDriver returns the link command and its leading arguments.
func (c *UnixCompiler) linkDriver(lang string) (driver, args []string) {
	if len(c.LDShared) > 0 {
		driver = c.LDShared
		if lang == LangCXX && len(c.CXX) > 0 {
			// Swap the C driver for the C++ one, keeping LDSHARED's flags.
			driver = append(append([]string{}, c.CXX...), c.LDShared[1:]...)
		}
		return driver, append([]string{}, c.LDFlags...)
	}

	driver = c.CC
	if lang == LangCXX {
		driver = c.CXX
	}
	args = append([]string{}, c.LDFlags...)
	if c.Darwin {
		args = append(args, "-bundle", "-undefined", "dynamic_lookup")
	} else {
		args = append(args, "-shared")
	}
	return driver, args
}

// writeDefFile writes a module-definition file exporting req.ExportSymbols.
func writeDefFile(req LinkRequest) (string, error) {
	dir := req.BuildTemp
	if dir == "" {
		dir = filepath.Dir(req.OutputPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(req.OutputPath), filepath.Ext(req.OutputPath))
	path := filepath.Join(dir, name+".def")

	var b strings.Builder
	b.WriteString("EXPORTS\n")
	for _, sym := range req.ExportSymbols {
		b.WriteString("    " + sym + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func firstOr(values []string, def string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return def
}
