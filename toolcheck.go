package extbuild

import (
	"fmt"
	"os/exec"
	"strings"
)

// execLookPath is replaced in tests.
var execLookPath = exec.LookPath

// ToolChecker is implemented by components that shell out to external tools
// (the pkg-config registry and the compiler drivers). The coordinator calls
// CheckTools before resolving anything so a missing toolchain is reported
// up front.
//
//	if checker, ok := compiler.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	RequiredTools() []ToolRequirement
	CheckTools() error
}

// ToolRequirement describes one external tool.
type ToolRequirement struct {
	// Name is the primary binary name, e.g. "pkg-config" or "cc".
	Name string

	// Alternatives satisfy the requirement when Name is missing.
	Alternatives []string

	// Optional tools never fail the check.
	Optional bool

	// Purpose is shown in the error when the tool is missing.
	Purpose string
}

// CheckToolAvailable returns an error unless tool is found in PATH.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies every non-optional requirement, trying
// alternatives in order, and reports all missing tools in one error:
//
//	pkg-config not found in PATH (package metadata queries)
//	missing required tools: pkg-config (package metadata queries), cc (C compiler)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil
		for _, alt := range req.Alternatives {
			if found {
				break
			}
			found = CheckToolAvailable(alt) == nil
		}

		if found || req.Optional {
			continue
		}
		if req.Purpose != "" {
			missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missingTools = append(missingTools, req.Name)
		}
	}

	switch len(missingTools) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	default:
		return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
	}
}

// RequiredTools returns the pkg-config binary this registry runs.
func (p *PkgConfig) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: p.tool(), Purpose: "package metadata queries"},
	}
}

// CheckTools verifies that pkg-config is available.
func (p *PkgConfig) CheckTools() error {
	return CheckRequiredTools(p.RequiredTools())
}
