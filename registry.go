package extbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry answers package-metadata queries about installed libraries.
//
// The resolver depends only on these four operations. PkgConfig is the
// production implementation; tests use in-memory fakes.
type Registry interface {
	// Exists reports whether the library is known to the registry.
	Exists(ctx context.Context, name string) (bool, error)

	// Version returns the installed version string.
	Version(ctx context.Context, name string) (string, error)

	// Installed reports whether the library is present and its installed
	// version satisfies constraint.
	Installed(ctx context.Context, name, constraint string) (bool, error)

	// Flags returns the compile and link inputs needed to build against the library.
	Flags(ctx context.Context, name string) (LibraryFlags, error)
}

// ErrRegistryUnavailable is returned when the registry tool cannot be run.
var ErrRegistryUnavailable = errors.New("package-metadata registry unavailable")

const defaultQueryCacheSize = 256

// PkgConfig is a Registry backed by the pkg-config tool.
//
// Query results are memoized for the lifetime of the value, so asking for
// the same module twice only runs pkg-config once.
type PkgConfig struct {
	// Path is the pkg-config executable. Defaults to $PKG_CONFIG, then "pkg-config".
	Path string

	// SearchPath is prepended to PKG_CONFIG_PATH for every query.
	SearchPath []string

	// Env holds extra environment variables for every query.
	Env map[string]string

	cache *lru.Cache[string, *toolRun]
}

// NewPkgConfig returns a PkgConfig using the tool named by $PKG_CONFIG, or
// "pkg-config" when unset.
func NewPkgConfig() *PkgConfig {
	return &PkgConfig{}
}

func (p *PkgConfig) tool() string {
	if p.Path != "" {
		return p.Path
	}
	if env := os.Getenv("PKG_CONFIG"); env != "" {
		return env
	}
	return "pkg-config"
}

func (p *PkgConfig) env() map[string]string {
	env := make(map[string]string, len(p.Env)+1)
	for k, v := range p.Env {
		env[k] = v
	}
	if len(p.SearchPath) > 0 {
		paths := append([]string(nil), p.SearchPath...)
		if existing := os.Getenv("PKG_CONFIG_PATH"); existing != "" {
			paths = append(paths, existing)
		}
		env["PKG_CONFIG_PATH"] = strings.Join(paths, string(os.PathListSeparator))
	}
	return env
}

// query runs pkg-config once per distinct argument list.
func (p *PkgConfig) query(ctx context.Context, args ...string) (*toolRun, error) {
	if p.cache == nil {
		cache, err := lru.New[string, *toolRun](defaultQueryCacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}

	key := strings.Join(args, "\x00")
	if run, ok := p.cache.Get(key); ok {
		return run, nil
	}

	run := runTool(ctx, p.env(), p.tool(), args...)
	if !run.Ran {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, run.Err)
	}
	p.cache.Add(key, run)
	return run, nil
}

// Exists runs "pkg-config --exists name".
func (p *PkgConfig) Exists(ctx context.Context, name string) (bool, error) {
	run, err := p.query(ctx, "--exists", name)
	if err != nil {
		return false, err
	}
	return run.Err == nil, nil
}

// Version runs "pkg-config --modversion name".
func (p *PkgConfig) Version(ctx context.Context, name string) (string, error) {
	run, err := p.query(ctx, "--modversion", name)
	if err != nil {
		return "", err
	}
	if run.Err != nil {
		return "", BuildError("pkg-config --modversion "+name, run.Output(), run.Err)
	}
	return strings.TrimSpace(run.Stdout), nil
}

// Installed checks existence, then compares the installed version against
// constraint. A malformed constraint is an error, not a false result.
func (p *PkgConfig) Installed(ctx context.Context, name, constraint string) (bool, error) {
	c, err := ParseConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("library %s: %w", name, err)
	}

	exists, err := p.Exists(ctx, name)
	if err != nil || !exists {
		return false, err
	}

	version, err := p.Version(ctx, name)
	if err != nil {
		return false, err
	}
	return c.Satisfied(version), nil
}

// Flags runs "pkg-config --cflags name" and "pkg-config --libs name" and
// sorts the tokens into LibraryFlags.
func (p *PkgConfig) Flags(ctx context.Context, name string) (LibraryFlags, error) {
	cflags, err := p.query(ctx, "--cflags", name)
	if err != nil {
		return LibraryFlags{}, err
	}
	if cflags.Err != nil {
		return LibraryFlags{}, BuildError("pkg-config --cflags "+name, cflags.Output(), cflags.Err)
	}

	libs, err := p.query(ctx, "--libs", name)
	if err != nil {
		return LibraryFlags{}, err
	}
	if libs.Err != nil {
		return LibraryFlags{}, BuildError("pkg-config --libs "+name, libs.Output(), libs.Err)
	}

	return parsePkgConfigFlags(cflags.Stdout, libs.Stdout), nil
}

// parsePkgConfigFlags sorts compiler and linker tokens. -I, -D, -L and -l
// are recognised in either output; anything else is kept as an extra
// compile or link argument depending on where it appeared.
func parsePkgConfigFlags(cflags, libs string) LibraryFlags {
	var f LibraryFlags

	classify := func(token string, link bool) {
		switch {
		case strings.HasPrefix(token, "-I") && len(token) > 2:
			f.IncludeDirs = appendUnique(f.IncludeDirs, token[2:])
		case strings.HasPrefix(token, "-D") && len(token) > 2:
			f.Defines = appendUniqueMacros(f.Defines, parseMacro(token[2:]))
		case strings.HasPrefix(token, "-L") && len(token) > 2:
			f.LibraryDirs = appendUnique(f.LibraryDirs, token[2:])
		case strings.HasPrefix(token, "-l") && len(token) > 2:
			f.Libraries = append(f.Libraries, token[2:])
		case link:
			f.ExtraLinkArgs = append(f.ExtraLinkArgs, token)
		default:
			f.ExtraCompileArgs = append(f.ExtraCompileArgs, token)
		}
	}

	for _, token := range splitFlags(cflags) {
		classify(token, false)
	}
	for _, token := range splitFlags(libs) {
		classify(token, true)
	}

	return f
}

// splitFlags splits pkg-config output on whitespace, honouring backslash
// escapes and single or double quotes the way pkg-config emits them.
func splitFlags(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens
}
