package cpydist

import (
	"context"

	setup "github.com/contriboss/connector-setup"
)

// ExtensionResult contains the output and status of one extension build.
type ExtensionResult struct {
	Name     string   // Extension name
	Success  bool     // True if the module was compiled and linked
	Output   []string // Lines of compiler and linker output
	Objects  []string // Object files, in source order
	Artifact string   // Path to the linked module
	Error    error    // Error if the build failed, nil otherwise
}

// buildPlan carries the resolved flags and directories for one extension.
type buildPlan struct {
	ext         setup.Extension
	opts        *setup.BuildOptions
	tempDir     string
	libDir      string
	cflags      []string
	ldflags     []string
	compiler    string
	cxxCompiler string
	linker      string
	env         map[string]string
	objects     []string
	artifact    string
}

// commonBuildSteps splits an extension build into the usual three steps:
//  1. Configure: resolve compilers, flags and output directories
//  2. Build: compile every source, then link the module
//  3. Find: confirm the linked module exists
type commonBuildSteps struct {
	ConfigureFunc func(ctx context.Context, plan *buildPlan, result *ExtensionResult) error
	BuildFunc     func(ctx context.Context, plan *buildPlan, result *ExtensionResult) error
	FindFunc      func(plan *buildPlan) (string, error)
}

// runCommonBuild executes the three build steps for one extension.
//
// If any step fails, processing stops and the error is returned with
// Success=false. Subsequent steps are not executed.
func runCommonBuild(ctx context.Context, plan *buildPlan, steps commonBuildSteps) (*ExtensionResult, error) {
	result := &ExtensionResult{
		Name:   plan.ext.Name,
		Output: []string{},
	}

	if err := steps.ConfigureFunc(ctx, plan, result); err != nil {
		result.Error = err
		return result, err
	}

	if err := steps.BuildFunc(ctx, plan, result); err != nil {
		result.Error = err
		return result, err
	}

	artifact, err := steps.FindFunc(plan)
	if err != nil {
		result.Error = err
		return result, err
	}

	result.Objects = append([]string(nil), plan.objects...)
	result.Artifact = artifact
	result.Success = true
	return result, nil
}
