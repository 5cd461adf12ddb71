package extbuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNativeSource(t *testing.T) {
	for _, src := range []string{"a.c", "a.C", "a.cc", "a.cpp", "a.cxx", "a.c++", "a.m", "dir/x.c"} {
		assert.True(t, IsNativeSource(src), src)
	}
	for _, src := range []string{"a.h", "a.py", "a", "a.o", "c"} {
		assert.False(t, IsNativeSource(src), src)
	}
}

func TestDetectLanguage(t *testing.T) {
	testCases := []struct {
		sources []string
		want    string
	}{
		{nil, ""},
		{[]string{"a.h"}, ""},
		{[]string{"a.c"}, LangC},
		{[]string{"a.c", "b.m"}, LangObjC},
		{[]string{"a.c", "b.cc", "c.m"}, LangCXX},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, DetectLanguage(tc.sources), "%v", tc.sources)
	}
}

func TestObjectFileName(t *testing.T) {
	out := filepath.Join("build", "temp")

	assert.Equal(t, filepath.Join(out, "python", "_brotli.o"), ObjectFileName("python/_brotli.c", out, ".o"))
	assert.Equal(t, filepath.Join(out, "src", "x.obj"), ObjectFileName("../src/x.cc", out, ".obj"))
	assert.Equal(t, filepath.Join(out, "abs", "y.o"), ObjectFileName("/abs/y.c", out, ".o"))
}

func TestNewCompiler(t *testing.T) {
	c, err := NewCompiler("")
	require.NoError(t, err)
	assert.Equal(t, CompilerUnix, c.Type())

	c, err = NewCompiler(CompilerMinGW)
	require.NoError(t, err)
	assert.Equal(t, CompilerMinGW, c.Type())

	c, err = NewCompiler(CompilerMSVC)
	require.NoError(t, err)
	assert.Equal(t, CompilerMSVC, c.Type())

	_, err = NewCompiler("bcpp")
	assert.Error(t, err)
}

func TestNewUnixCompilerFromEnvironment(t *testing.T) {
	t.Setenv("CC", "ccache gcc")
	t.Setenv("CXX", "")
	t.Setenv("CFLAGS", "-O2 -fno-strict-aliasing")
	t.Setenv("LDFLAGS", "")
	t.Setenv("LDSHARED", "")

	c := NewUnixCompiler("")
	assert.Equal(t, CompilerUnix, c.Type())
	assert.Equal(t, []string{"ccache", "gcc"}, c.CC)
	assert.Equal(t, []string{"c++"}, c.CXX)
	assert.Equal(t, []string{"-O2", "-fno-strict-aliasing"}, c.CFlags)
	assert.Empty(t, c.LDShared)
}

func TestUnixCompilerCompile(t *testing.T) {
	shell := &fakeShell{succeed: true}
	stubShell(t, shell)

	out := t.TempDir()
	c := &UnixCompiler{
		compilerType: CompilerUnix,
		CC:           []string{"ccache", "gcc"},
		CXX:          []string{"g++"},
		CFlags:       []string{"-fPIC"},
	}

	var output []string
	objects, err := c.Compile(context.Background(), CompileRequest{
		Sources:     []string{"python/_brotli.c", "python/extra.cc"},
		OutputDir:   out,
		Macros:      []Macro{Define("A", "1"), Undefine("B")},
		IncludeDirs: []string{"/opt/brotli/include"},
		ExtraArgs:   []string{"-O2"},
		Debug:       true,
	}, &output)
	require.NoError(t, err)

	obj1 := filepath.Join(out, "python", "_brotli.o")
	obj2 := filepath.Join(out, "python", "extra.o")
	assert.Equal(t, []string{obj1, obj2}, objects)
	assert.DirExists(t, filepath.Join(out, "python"))

	assert.Equal(t, []string{
		"ccache gcc -fPIC -g -I/opt/brotli/include -DA=1 -UB -c python/_brotli.c -o " + obj1 + " -O2",
		"g++ -fPIC -g -I/opt/brotli/include -DA=1 -UB -c python/extra.cc -o " + obj2 + " -O2",
	}, shell.calls)
	assert.Equal(t, shell.calls, output)
}

func TestUnixCompilerCompileFailure(t *testing.T) {
	out := t.TempDir()
	src := "python/_brotli.c"
	obj := filepath.Join(out, "python", "_brotli.o")

	stubShell(t, &fakeShell{responses: map[string]fakeResponse{
		"cc -c " + src + " -o " + obj: {stderr: "python/_brotli.c:1:10: fatal error: brotli/decode.h: No such file or directory\n", fail: true},
	}})

	c := &UnixCompiler{compilerType: CompilerUnix, CC: []string{"cc"}, CXX: []string{"c++"}}
	var output []string
	_, err := c.Compile(context.Background(), CompileRequest{Sources: []string{src}, OutputDir: out}, &output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile python/_brotli.c failed")
	assert.Contains(t, err.Error(), "brotli/decode.h")
	assert.Contains(t, output, "python/_brotli.c:1:10: fatal error: brotli/decode.h: No such file or directory")
}

func TestUnixCompilerLinkSharedObject(t *testing.T) {
	out := filepath.Join(t.TempDir(), "lib", "_brotli.so")

	testCases := []struct {
		name     string
		compiler *UnixCompiler
		lang     string
		want     string
	}{
		{
			name:     "linux",
			compiler: &UnixCompiler{compilerType: CompilerUnix, CC: []string{"gcc"}, CXX: []string{"g++"}, LDFlags: []string{"-Wl,-O1"}},
			lang:     LangC,
			want:     "gcc -Wl,-O1 -shared a.o b.o -L/opt/brotli/lib -Wl,-rpath,/opt/brotli/lib -lbrotlidec -lbrotlienc -pthread -o " + out,
		},
		{
			name:     "darwin bundle",
			compiler: &UnixCompiler{compilerType: CompilerUnix, CC: []string{"clang"}, CXX: []string{"clang++"}, Darwin: true},
			lang:     LangCXX,
			want:     "clang++ -bundle -undefined dynamic_lookup a.o b.o -L/opt/brotli/lib -Wl,-rpath,/opt/brotli/lib -lbrotlidec -lbrotlienc -pthread -o " + out,
		},
		{
			name: "ldshared with c++ sources",
			compiler: &UnixCompiler{
				compilerType: CompilerUnix,
				CC:           []string{"gcc"},
				CXX:          []string{"g++"},
				LDShared:     []string{"gcc", "-shared", "-Wl,-z,relro"},
			},
			lang: LangCXX,
			want: "g++ -shared -Wl,-z,relro a.o b.o -L/opt/brotli/lib -Wl,-rpath,/opt/brotli/lib -lbrotlidec -lbrotlienc -pthread -o " + out,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			shell := &fakeShell{succeed: true}
			stubShell(t, shell)

			var output []string
			err := tc.compiler.LinkSharedObject(context.Background(), LinkRequest{
				Objects:            []string{"a.o", "b.o"},
				OutputPath:         out,
				Libraries:          []string{"brotlidec", "brotlienc"},
				LibraryDirs:        []string{"/opt/brotli/lib"},
				RuntimeLibraryDirs: []string{"/opt/brotli/lib"},
				ExtraArgs:          []string{"-pthread"},
				TargetLang:         tc.lang,
			}, &output)
			require.NoError(t, err)
			assert.Equal(t, []string{tc.want}, shell.calls)
		})
	}
}

func TestUnixCompilerLinkDoesNotAliasDriver(t *testing.T) {
	stubShell(t, &fakeShell{succeed: true})

	c := &UnixCompiler{compilerType: CompilerUnix, CC: make([]string, 2, 8), CXX: []string{"c++"}}
	c.CC[0], c.CC[1] = "gcc", "-m64"

	var output []string
	req := LinkRequest{Objects: []string{"a.o"}, OutputPath: filepath.Join(t.TempDir(), "x.so")}
	require.NoError(t, c.LinkSharedObject(context.Background(), req, &output))
	require.NoError(t, c.LinkSharedObject(context.Background(), req, &output))

	assert.Equal(t, []string{"gcc", "-m64"}, c.CC)
	assert.Empty(t, c.CC[:cap(c.CC)][2], "spare capacity of the driver slice is untouched")
}

func TestUnixCompilerMinGWExports(t *testing.T) {
	shell := &fakeShell{succeed: true}
	stubShell(t, shell)

	temp := t.TempDir()
	out := filepath.Join(temp, "_brotli.pyd")
	c := &UnixCompiler{compilerType: CompilerMinGW, CC: []string{"gcc"}, CXX: []string{"g++"}}

	var output []string
	err := c.LinkSharedObject(context.Background(), LinkRequest{
		Objects:       []string{"a.o"},
		OutputPath:    out,
		ExportSymbols: []string{"PyInit__brotli"},
		BuildTemp:     temp,
	}, &output)
	require.NoError(t, err)

	def := filepath.Join(temp, "_brotli.def")
	data, err := os.ReadFile(def)
	require.NoError(t, err)
	assert.Equal(t, "EXPORTS\n    PyInit__brotli\n", string(data))
	assert.Equal(t, []string{"gcc -shared a.o " + def + " -o " + out}, shell.calls)
}

func TestUnixCompilerLinkFailure(t *testing.T) {
	stubShell(t, &fakeShell{})

	c := &UnixCompiler{compilerType: CompilerUnix, CC: []string{"cc"}, CXX: []string{"c++"}}
	var output []string
	err := c.LinkSharedObject(context.Background(), LinkRequest{
		Objects:    []string{"a.o"},
		OutputPath: filepath.Join(t.TempDir(), "_brotli.so"),
	}, &output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link _brotli.so failed")
}

func TestMSVCCompiler(t *testing.T) {
	shell := &fakeShell{succeed: true}
	stubShell(t, shell)

	temp := t.TempDir()
	c := NewMSVCCompiler()

	var output []string
	objects, err := c.Compile(context.Background(), CompileRequest{
		Sources:     []string{"python/_brotli.c"},
		OutputDir:   temp,
		Macros:      []Macro{Define("A", "1"), Define("B", ""), Undefine("C")},
		IncludeDirs: []string{`C:\brotli\include`},
	}, &output)
	require.NoError(t, err)

	obj := filepath.Join(temp, "python", "_brotli.obj")
	assert.Equal(t, []string{obj}, objects)

	out := filepath.Join(temp, "lib", "_brotli.pyd")
	err = c.LinkSharedObject(context.Background(), LinkRequest{
		Objects:       objects,
		OutputPath:    out,
		Libraries:     []string{"brotlidec", "python3.lib"},
		LibraryDirs:   []string{`C:\brotli\lib`},
		ExportSymbols: []string{"PyInit__brotli"},
		BuildTemp:     temp,
		Debug:         true,
	}, &output)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`cl /nologo /c /MD /W3 /Ox /IC:\brotli\include /DA=1 /DB /UC /Tcpython/_brotli.c /Fo` + obj,
		`link /nologo /DLL /INCREMENTAL:NO /DEBUG /LIBPATH:C:\brotli\lib /EXPORT:PyInit__brotli ` + obj +
			` brotlidec.lib python3.lib /IMPLIB:` + filepath.Join(temp, "_brotli.lib") + ` /OUT:` + out,
	}, shell.calls)
}

func TestMSVCCompilerCompileFailure(t *testing.T) {
	stubShell(t, &fakeShell{})

	_, err := NewMSVCCompiler().Compile(context.Background(), CompileRequest{
		Sources:   []string{"x.cpp"},
		OutputDir: t.TempDir(),
	}, new([]string))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLink))
	assert.Contains(t, err.Error(), "compile x.cpp failed")
}

func TestUnixCompilerLinkKeepsDollarArguments(t *testing.T) {
	var argv []string
	stubCommand(t, 0, &argv)

	c := &UnixCompiler{
		compilerType: CompilerUnix,
		CC:           []string{"cc"},
		CXX:          []string{"c++"},
		LDShared:     []string{"cc", "-shared"},
		LDFlags:      []string{"-Wl,-rpath,$ORIGIN/../lib"},
	}
	out := filepath.Join(t.TempDir(), "_brotli.so")

	var output []string
	err := c.LinkSharedObject(context.Background(), LinkRequest{
		Objects:    []string{"a.o"},
		OutputPath: out,
		TargetLang: LangC,
	}, &output)
	require.NoError(t, err)

	assert.Contains(t, argv, "-Wl,-rpath,$ORIGIN/../lib")
	assert.Equal(t, []string{"cc", "-shared", "-Wl,-rpath,$ORIGIN/../lib", "a.o", "-o", out}, argv)
}
