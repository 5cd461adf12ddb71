package extbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeShell stands in for startTool. Responses are keyed by the full command
// line; unknown commands exit with status 1 unless succeed is set.
type fakeShell struct {
	responses map[string]fakeResponse
	succeed   bool
	calls     []string
	envs      []map[string]string
}

type fakeResponse struct {
	stdout string
	stderr string
	fail   bool
	notRun bool
}

func (f *fakeShell) exec(_ context.Context, env map[string]string, stdout, stderr io.Writer, cmd string, args ...string) (bool, error) {
	line := strings.TrimSpace(cmd + " " + strings.Join(args, " "))
	f.calls = append(f.calls, line)
	f.envs = append(f.envs, env)

	resp, ok := f.responses[line]
	if !ok {
		if f.succeed {
			return true, nil
		}
		return true, errors.New("exit status 1")
	}
	if resp.notRun {
		return false, fmt.Errorf("exec: %q: executable file not found in $PATH", cmd)
	}
	_, _ = io.WriteString(stdout, resp.stdout)
	_, _ = io.WriteString(stderr, resp.stderr)
	if resp.fail {
		return true, errors.New("exit status 1")
	}
	return true, nil
}

func (f *fakeShell) count(line string) int {
	n := 0
	for _, c := range f.calls {
		if c == line {
			n++
		}
	}
	return n
}

// stubShell installs f as the process runner for the duration of the test.
func stubShell(t *testing.T, f *fakeShell) {
	t.Helper()
	orig := shExec
	shExec = f.exec
	t.Cleanup(func() { shExec = orig })
}

func brotliShell() *fakeShell {
	return &fakeShell{responses: map[string]fakeResponse{
		"pkg-config --exists libbrotlidec":     {},
		"pkg-config --modversion libbrotlidec": {stdout: "1.1.0\n"},
		"pkg-config --cflags libbrotlidec":     {stdout: "-I/opt/brotli/include -DBROTLI_SHARED_COMPILATION\n"},
		"pkg-config --libs libbrotlidec":       {stdout: "-L/opt/brotli/lib -lbrotlidec -pthread\n"},
	}}
}

func TestPkgConfigQueries(t *testing.T) {
	t.Setenv("PKG_CONFIG", "")
	shell := brotliShell()
	stubShell(t, shell)

	ctx := context.Background()
	p := NewPkgConfig()

	exists, err := p.Exists(ctx, "libbrotlidec")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = p.Exists(ctx, "libmissing")
	require.NoError(t, err)
	assert.False(t, exists, "a non-zero exit means the module is unknown")

	version, err := p.Version(ctx, "libbrotlidec")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", version)

	ok, err := p.Installed(ctx, "libbrotlidec", ">= 1.0.9")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Installed(ctx, "libbrotlidec", ">= 2.0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Installed(ctx, "libmissing", "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Installed(ctx, "libbrotlidec", ">=")
	assert.Error(t, err)

	flags, err := p.Flags(ctx, "libbrotlidec")
	require.NoError(t, err)
	assert.Equal(t, LibraryFlags{
		IncludeDirs:   []string{"/opt/brotli/include"},
		LibraryDirs:   []string{"/opt/brotli/lib"},
		Libraries:     []string{"brotlidec"},
		Defines:       []Macro{Define("BROTLI_SHARED_COMPILATION", "")},
		ExtraLinkArgs: []string{"-pthread"},
	}, flags)
}

func TestPkgConfigMemoizesQueries(t *testing.T) {
	t.Setenv("PKG_CONFIG", "")
	shell := brotliShell()
	stubShell(t, shell)

	ctx := context.Background()
	p := NewPkgConfig()

	for i := 0; i < 3; i++ {
		_, err := p.Installed(ctx, "libbrotlidec", ">= 1.0")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, shell.count("pkg-config --exists libbrotlidec"))
	assert.Equal(t, 1, shell.count("pkg-config --modversion libbrotlidec"))
}

func TestPkgConfigToolAndEnvironment(t *testing.T) {
	t.Setenv("PKG_CONFIG", "x86_64-linux-gnu-pkg-config")
	t.Setenv("PKG_CONFIG_PATH", "/usr/lib/pkgconfig")

	shell := &fakeShell{responses: map[string]fakeResponse{
		"x86_64-linux-gnu-pkg-config --exists libbrotlidec": {},
	}}
	stubShell(t, shell)

	p := &PkgConfig{SearchPath: []string{"/opt/brotli/lib/pkgconfig"}, Env: map[string]string{"PKG_CONFIG_SYSROOT_DIR": "/sysroot"}}
	exists, err := p.Exists(context.Background(), "libbrotlidec")
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, shell.envs, 1)
	assert.Equal(t, "/opt/brotli/lib/pkgconfig:/usr/lib/pkgconfig", shell.envs[0]["PKG_CONFIG_PATH"])
	assert.Equal(t, "/sysroot", shell.envs[0]["PKG_CONFIG_SYSROOT_DIR"])

	p.Path = "/custom/pkgconf"
	assert.Equal(t, "/custom/pkgconf", p.tool())
}

func TestPkgConfigUnavailable(t *testing.T) {
	t.Setenv("PKG_CONFIG", "")
	stubShell(t, &fakeShell{responses: map[string]fakeResponse{
		"pkg-config --exists libbrotlidec": {notRun: true},
	}})

	_, err := NewPkgConfig().Exists(context.Background(), "libbrotlidec")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryUnavailable))
}

func TestPkgConfigFlagsFailure(t *testing.T) {
	t.Setenv("PKG_CONFIG", "")
	stubShell(t, &fakeShell{responses: map[string]fakeResponse{
		"pkg-config --cflags libbroken": {stderr: "Package libbroken was not found\n", fail: true},
	}})

	_, err := NewPkgConfig().Flags(context.Background(), "libbroken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pkg-config --cflags libbroken failed")
	assert.Contains(t, err.Error(), "Package libbroken was not found")
}

func TestParsePkgConfigFlags(t *testing.T) {
	flags := parsePkgConfigFlags(
		`-I/opt/brotli/include -I/opt/brotli/include -DFOO=1 -DBAR -pthread -I"/path with space/include"`,
		`-L/opt/brotli/lib -lbrotlienc -lbrotlicommon -Wl,-rpath,/opt/brotli/lib`,
	)

	assert.Equal(t, []string{"/opt/brotli/include", "/path with space/include"}, flags.IncludeDirs)
	assert.Equal(t, []Macro{Define("FOO", "1"), Define("BAR", "")}, flags.Defines)
	assert.Equal(t, []string{"-pthread"}, flags.ExtraCompileArgs)
	assert.Equal(t, []string{"/opt/brotli/lib"}, flags.LibraryDirs)
	assert.Equal(t, []string{"brotlienc", "brotlicommon"}, flags.Libraries)
	assert.Equal(t, []string{"-Wl,-rpath,/opt/brotli/lib"}, flags.ExtraLinkArgs)
}

func TestSplitFlags(t *testing.T) {
	testCases := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"-I/a  -I/b\n", []string{"-I/a", "-I/b"}},
		{`-I/a\ b`, []string{"-I/a b"}},
		{`'-DX="y z"'`, []string{`-DX="y z"`}},
		{`"-I/c d" -lm`, []string{"-I/c d", "-lm"}},
		{"ccache gcc", []string{"ccache", "gcc"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, splitFlags(tc.input))
		})
	}
}
