package extbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MSVCCompiler drives the Microsoft toolchain (cl.exe and link.exe).
type MSVCCompiler struct {
	CL   string
	Link string
}

// NewMSVCCompiler returns a driver using cl and link from PATH.
func NewMSVCCompiler() *MSVCCompiler {
	return &MSVCCompiler{CL: "cl", Link: "link"}
}

// Type returns CompilerMSVC.
func (c *MSVCCompiler) Type() string { return CompilerMSVC }

// RequiredTools returns the tools this compiler needs.
func (c *MSVCCompiler) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: c.CL, Purpose: "MSVC C/C++ compiler"},
		{Name: c.Link, Purpose: "MSVC linker"},
	}
}

// CheckTools verifies that cl and link are available.
func (c *MSVCCompiler) CheckTools() error {
	return CheckRequiredTools(c.RequiredTools())
}

// DetectLanguage returns the link language for sources.
func (c *MSVCCompiler) DetectLanguage(sources []string) string {
	return DetectLanguage(sources)
}

// Compile runs cl /c once per source.
func (c *MSVCCompiler) Compile(ctx context.Context, req CompileRequest, output *[]string) ([]string, error) {
	objects := make([]string, 0, len(req.Sources))

	for _, src := range req.Sources {
		obj := ObjectFileName(src, req.OutputDir, ".obj")
		if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
			return nil, fmt.Errorf("creating object directory: %w", err)
		}

		args := []string{"/nologo", "/c", "/MD", "/W3"}
		if req.Debug {
			args = append(args, "/Od", "/Zi")
		} else {
			args = append(args, "/Ox")
		}
		for _, dir := range req.IncludeDirs {
			args = append(args, "/I"+dir)
		}
		for _, m := range req.Macros {
			switch {
			case m.Undef:
				args = append(args, "/U"+m.Name)
			case m.Value == "":
				args = append(args, "/D"+m.Name)
			default:
				args = append(args, "/D"+m.Name+"="+m.Value)
			}
		}
		if DetectLanguage([]string{src}) == LangCXX {
			args = append(args, "/Tp"+src)
		} else {
			args = append(args, "/Tc"+src)
		}
		args = append(args, "/Fo"+obj)
		args = append(args, req.ExtraArgs...)

		run := runTool(ctx, nil, c.CL, args...)
		*output = append(*output, run.Command)
		*output = append(*output, run.Output()...)
		if run.Err != nil {
			return nil, BuildError("compile "+src, run.Output(), run.Err)
		}

		objects = append(objects, obj)
	}

	return objects, nil
}

// LinkSharedObject runs link /DLL.
func (c *MSVCCompiler) LinkSharedObject(ctx context.Context, req LinkRequest, output *[]string) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	args := []string{"/nologo", "/DLL", "/INCREMENTAL:NO"}
	if req.Debug {
		args = append(args, "/DEBUG")
	}
	for _, dir := range req.LibraryDirs {
		args = append(args, "/LIBPATH:"+dir)
	}
	for _, sym := range req.ExportSymbols {
		args = append(args, "/EXPORT:"+sym)
	}
	args = append(args, req.Objects...)
	for _, lib := range req.Libraries {
		if !strings.HasSuffix(strings.ToLower(lib), ".lib") {
			lib += ".lib"
		}
		args = append(args, lib)
	}
	if req.BuildTemp != "" {
		stem := strings.TrimSuffix(filepath.Base(req.OutputPath), filepath.Ext(req.OutputPath))
		args = append(args, "/IMPLIB:"+filepath.Join(req.BuildTemp, stem+".lib"))
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, "/OUT:"+req.OutputPath)

	run := runTool(ctx, nil, c.Link, args...)
	*output = append(*output, run.Command)
	*output = append(*output, run.Output()...)
	if run.Err != nil {
		return BuildError("link "+filepath.Base(req.OutputPath), run.Output(), run.Err)
	}

	return nil
}
