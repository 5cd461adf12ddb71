package extbuild

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by this package matches exactly one of
// these through errors.Is. All of them are fatal: nothing here retries or
// downgrades them to warnings.
var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrVersionMismatch   = errors.New("version mismatch")
	ErrMalformedTarget   = errors.New("malformed build target")
	ErrCompile           = errors.New("compiler failure")
	ErrLink              = errors.New("linker failure")
	ErrVersionHeader     = errors.New("version header read failure")
)

// MissingDependencyError reports a required library absent from the registry.
type MissingDependencyError struct {
	Library string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("required library %s not found", e.Library)
}

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }

// VersionMismatchError reports a library whose installed version does not
// satisfy its requirement.
type VersionMismatchError struct {
	Library    string
	Installed  string
	Constraint string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("required library %s %s not satisfied: installed version is %q",
		e.Library, e.Constraint, e.Installed)
}

func (e *VersionMismatchError) Is(target error) bool { return target == ErrVersionMismatch }

// MalformedTargetError reports a build target that cannot be built as declared.
type MalformedTargetError struct {
	Target string
	Reason string
}

func (e *MalformedTargetError) Error() string {
	return fmt.Sprintf("in extension %q: %s", e.Target, e.Reason)
}

func (e *MalformedTargetError) Is(target error) bool { return target == ErrMalformedTarget }

// CompileError wraps a failed compiler invocation for a target.
type CompileError struct {
	Target string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling extension %q: %v", e.Target, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// LinkError wraps a failed link step for a target.
type LinkError struct {
	Target string
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("linking extension %q: %v", e.Target, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

func (e *LinkError) Is(target error) bool { return target == ErrLink }

// VersionHeaderError reports a version header that could not be read.
type VersionHeaderError struct {
	Path string
	Err  error
}

func (e *VersionHeaderError) Error() string {
	return fmt.Sprintf("reading version header %s: %v", e.Path, e.Err)
}

func (e *VersionHeaderError) Unwrap() error { return e.Err }

func (e *VersionHeaderError) Is(target error) bool { return target == ErrVersionHeader }
