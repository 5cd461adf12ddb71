package extbuild

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLibrary struct {
	version string
	flags   LibraryFlags
}

// fakeRegistry is an in-memory Registry that records every call.
type fakeRegistry struct {
	libraries map[string]fakeLibrary
	calls     []string
	err       error
}

func (r *fakeRegistry) record(op, name string) { r.calls = append(r.calls, op+" "+name) }

func (r *fakeRegistry) Exists(_ context.Context, name string) (bool, error) {
	r.record("exists", name)
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.libraries[name]
	return ok, nil
}

func (r *fakeRegistry) Version(_ context.Context, name string) (string, error) {
	r.record("version", name)
	return r.libraries[name].version, nil
}

func (r *fakeRegistry) Installed(_ context.Context, name, constraint string) (bool, error) {
	r.record("installed", name)
	lib, ok := r.libraries[name]
	if !ok {
		return false, nil
	}
	c, err := ParseConstraint(constraint)
	if err != nil {
		return false, err
	}
	return c.Satisfied(lib.version), nil
}

func (r *fakeRegistry) Flags(_ context.Context, name string) (LibraryFlags, error) {
	r.record("flags", name)
	return r.libraries[name].flags, nil
}

func (r *fakeRegistry) flagCalls() []string {
	var calls []string
	for _, c := range r.calls {
		if len(c) > 6 && c[:6] == "flags " {
			calls = append(calls, c[6:])
		}
	}
	return calls
}

func brotliRegistry() *fakeRegistry {
	return &fakeRegistry{libraries: map[string]fakeLibrary{
		"libbrotlicommon": {version: "1.1.0", flags: LibraryFlags{
			IncludeDirs: []string{"/opt/brotli/include"},
			LibraryDirs: []string{"/opt/brotli/lib"},
			Libraries:   []string{"brotlicommon"},
		}},
		"libbrotlidec": {version: "1.1.0", flags: LibraryFlags{
			IncludeDirs: []string{"/opt/brotli/include"},
			LibraryDirs: []string{"/opt/brotli/lib"},
			Libraries:   []string{"brotlidec"},
		}},
		"libbrotlienc": {version: "1.1.0", flags: LibraryFlags{
			IncludeDirs: []string{"/opt/brotli/include"},
			LibraryDirs: []string{"/opt/brotli/lib"},
			Libraries:   []string{"brotlienc"},
		}},
	}}
}

func TestResolvePreservesRequirementOrder(t *testing.T) {
	registry := brotliRegistry()
	requirements := []LibraryRequirement{
		{Name: "libbrotlidec", Constraint: ">= 1.0"},
		{Name: "libbrotlienc", Constraint: ">= 1.0"},
		{Name: "libbrotlicommon", Constraint: "= 1.1.0"},
	}

	flags, err := Resolve(context.Background(), registry, requirements)
	require.NoError(t, err)

	assert.Equal(t, []string{"brotlidec", "brotlienc", "brotlicommon"}, flags.Libraries())
	assert.Equal(t, []string{"/opt/brotli/include"}, flags.IncludeDirs())
	assert.Equal(t, []string{"/opt/brotli/lib"}, flags.LibraryDirs())
	assert.Equal(t, []string{
		"exists libbrotlidec", "version libbrotlidec", "installed libbrotlidec", "flags libbrotlidec",
		"exists libbrotlienc", "version libbrotlienc", "installed libbrotlienc", "flags libbrotlienc",
		"exists libbrotlicommon", "version libbrotlicommon", "installed libbrotlicommon", "flags libbrotlicommon",
	}, registry.calls)
}

func TestResolveMissingDependency(t *testing.T) {
	registry := brotliRegistry()
	requirements := []LibraryRequirement{
		{Name: "libbrotlidec"},
		{Name: "libbrotli"},
		{Name: "libbrotlienc"},
	}

	flags, err := Resolve(context.Background(), registry, requirements)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDependency))
	assert.Equal(t, "required library libbrotli not found", err.Error())
	assert.True(t, flags.IsEmpty())

	assert.Equal(t, []string{"libbrotlidec"}, registry.flagCalls(), "no flags are queried after the failure")
	assert.NotContains(t, registry.calls, "exists libbrotlienc")
}

func TestResolveVersionMismatch(t *testing.T) {
	registry := &fakeRegistry{libraries: map[string]fakeLibrary{
		"libfoo": {version: "1.5"},
		"libbar": {version: "3.0"},
	}}

	_, err := Resolve(context.Background(), registry, []LibraryRequirement{
		{Name: "libfoo", Constraint: ">= 2.0"},
		{Name: "libbar"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionMismatch))
	assert.False(t, errors.Is(err, ErrMissingDependency))

	var mismatch *VersionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "libfoo", mismatch.Library)
	assert.Equal(t, "1.5", mismatch.Installed)
	assert.Equal(t, ">= 2.0", mismatch.Constraint)
	assert.Contains(t, err.Error(), "libfoo")
	assert.Contains(t, err.Error(), ">= 2.0")
	assert.Contains(t, err.Error(), "1.5")

	assert.Empty(t, registry.flagCalls())
}

func TestResolveRegistryError(t *testing.T) {
	registry := &fakeRegistry{err: ErrRegistryUnavailable}

	_, err := Resolve(context.Background(), registry, []LibraryRequirement{{Name: "libbrotlidec"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryUnavailable))
	assert.Contains(t, err.Error(), "libbrotlidec")
}

func TestResolveNoRequirements(t *testing.T) {
	flags, err := Resolve(context.Background(), brotliRegistry(), nil)
	require.NoError(t, err)
	assert.True(t, flags.IsEmpty())
}
