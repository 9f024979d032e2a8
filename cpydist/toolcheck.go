package cpydist

import (
	"fmt"
	"os/exec"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

// ToolChecker is implemented by commands that shell out to external tools.
//
// Commands check their tools before doing any work so a missing compiler or
// packaging utility fails fast with a readable message instead of a half-built tree.
//
// # Example
//
//	if checker, ok := cmd.(ToolChecker); ok {
//	    if err := checker.CheckTools(&dist.Options); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the tools this command needs for the given options.
	RequiredTools(opts *setup.BuildOptions) []ToolRequirement

	// CheckTools verifies that all required tools are available.
	CheckTools(opts *setup.BuildOptions) error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name: "cc",
//	    Alternatives: []string{"gcc", "clang"},
//	    Purpose: "C compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "cc", "pkgmk").
	Name string

	// Alternatives can satisfy the requirement when Name is not found.
	Alternatives []string

	// Optional tools never cause an error when missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

var execLookPath = exec.LookPath

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// Resolve returns the binary that satisfies the requirement: Name when it is
// on PATH, otherwise the first alternative that is. ok is false when none is.
func (req ToolRequirement) Resolve() (tool string, ok bool) {
	for _, candidate := range append([]string{req.Name}, req.Alternatives...) {
		if CheckToolAvailable(candidate) == nil {
			return candidate, true
		}
	}
	return req.Name, false
}

func (req ToolRequirement) String() string {
	if req.Purpose == "" {
		return req.Name
	}
	return fmt.Sprintf("%s (%s)", req.Name, req.Purpose)
}

// CheckRequiredTools reports every non-optional requirement that Resolve cannot
// satisfy, in one error:
//
//	missing required tools: cc (C compiler), pkgmk (SVR4 package builder)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string
	for _, req := range requirements {
		if _, ok := req.Resolve(); !ok && !req.Optional {
			missingTools = append(missingTools, req.String())
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
}
