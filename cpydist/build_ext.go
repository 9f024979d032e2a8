package cpydist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

// BuildExt compiles the declared native extensions into loadable modules.
//
// Each source is compiled to an object file under build/temp.<plat>/<ext>/ in
// declaration order, then all objects are linked into build/lib.<plat>/<name><suffix>.
type BuildExt struct{}

// Name returns the command name.
func (b *BuildExt) Name() string {
	return setup.CmdBuildExt
}

// RequiredTools returns the C and C++ compilers, in that order, followed by
// mysql_config when the C API is enabled.
func (b *BuildExt) RequiredTools(opts *setup.BuildOptions) []ToolRequirement {
	reqs := []ToolRequirement{
		{
			Name:         cCompiler(opts),
			Alternatives: []string{"gcc", "clang"},
			Purpose:      "C compiler for native extensions",
		},
		{
			Name:         cxxCompiler(opts),
			Alternatives: []string{"g++", "clang++"},
			Purpose:      "C++ compiler and linker for native extensions",
		},
	}
	if opts.MySQLConfig != "" {
		reqs = append(reqs, ToolRequirement{
			Name:    opts.MySQLConfig,
			Purpose: "MySQL C API configuration",
		})
	}
	return reqs
}

// CheckTools verifies that the compilers are available.
func (b *BuildExt) CheckTools(opts *setup.BuildOptions) error {
	return CheckRequiredTools(b.RequiredTools(opts))
}

// Run builds every extension of the distribution.
func (b *BuildExt) Run(ctx context.Context, dist *setup.Distribution) error {
	if len(dist.Descriptor.Extensions) == 0 {
		return nil
	}
	if err := b.CheckTools(&dist.Options); err != nil {
		return fmt.Errorf("build tools missing: %w", err)
	}

	results, err := b.BuildAllExtensions(ctx, &dist.Options, dist.Descriptor.Extensions)
	for _, result := range results {
		log := dist.Log.WithField("extension", result.Name)
		if dist.Options.Verbose {
			for _, line := range result.Output {
				log.Debug(line)
			}
		}
		if result.Success {
			dist.AddOutput(b.Name(), result.Artifact)
			log.WithField("module", result.Artifact).Info("built extension")
		}
	}
	return err
}

// BuildAllExtensions builds extensions in sequence and stops at the first failure.
//
// # Parameters
//
//   - ctx: canceling it kills the running compiler and skips the remaining extensions
//   - opts: compilers, include and library directories and extra flags
//   - exts: extensions in declaration order
//
// # Returns
//
// A result for every extension processed, including the failed one, and the
// first error wrapped with the extension name.
//
// # Thread Safety
//
// Extensions share build/temp.<plat>, so callers must not build the same tree
// concurrently.
func (b *BuildExt) BuildAllExtensions(ctx context.Context, opts *setup.BuildOptions, exts []setup.Extension) ([]*ExtensionResult, error) {
	var results []*ExtensionResult

	for _, ext := range exts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, &ExtensionResult{Name: ext.Name, Error: ctxErr})
			return results, ctxErr
		}

		plan := &buildPlan{ext: ext, opts: opts}
		result, err := runCommonBuild(ctx, plan, commonBuildSteps{
			ConfigureFunc: b.configure,
			BuildFunc:     b.compileAndLink,
			FindFunc:      b.findModule,
		})
		results = append(results, result)
		if err != nil {
			return results, fmt.Errorf("extension %s: %w", ext.Name, err)
		}
	}

	return results, nil
}

// LibDir returns the directory built modules are linked into.
func LibDir(opts *setup.BuildOptions) string {
	return filepath.Join(opts.Path(opts.BuildDir), "lib."+PlatformName(opts))
}

// configure resolves compilers, flags and output directories
func (b *BuildExt) configure(ctx context.Context, plan *buildPlan, result *ExtensionResult) error {
	opts := plan.opts
	ext := plan.ext

	plan.tempDir = filepath.Join(opts.Path(opts.BuildDir), "temp."+PlatformName(opts), ext.Name)
	plan.libDir = LibDir(opts)
	plan.artifact = filepath.Join(plan.libDir, ext.Name+extSuffix())

	tools := b.RequiredTools(opts)
	plan.compiler, _ = tools[0].Resolve()
	plan.cxxCompiler, _ = tools[1].Resolve()
	plan.linker = plan.compiler
	if ext.Language() == "c++" {
		plan.linker = plan.cxxCompiler
	}

	if runtime.GOOS != "windows" {
		plan.cflags = append(plan.cflags, "-fPIC")
	}
	if opts.Debug {
		plan.cflags = append(plan.cflags, "-g", "-O0")
	} else {
		plan.cflags = append(plan.cflags, "-O2", "-DNDEBUG")
	}
	if opts.PythonInclude != "" {
		plan.cflags = append(plan.cflags, "-I"+opts.PythonInclude)
	}
	for _, dir := range ext.IncludeDirs {
		plan.cflags = append(plan.cflags, "-I"+opts.Path(dir))
	}
	if opts.ProtobufIncludeDir != "" {
		plan.cflags = append(plan.cflags, "-I"+opts.ProtobufIncludeDir)
	}
	for _, macro := range ext.DefineMacros {
		plan.cflags = append(plan.cflags, macro.Flag())
	}

	switch runtime.GOOS {
	case "darwin":
		plan.ldflags = append(plan.ldflags, "-bundle", "-undefined", "dynamic_lookup")
	default:
		plan.ldflags = append(plan.ldflags, "-shared")
	}
	for _, dir := range ext.LibraryDirs {
		plan.ldflags = append(plan.ldflags, "-L"+opts.Path(dir))
	}
	if opts.ProtobufLibDir != "" {
		plan.ldflags = append(plan.ldflags, "-L"+opts.ProtobufLibDir)
	}
	for _, lib := range ext.Libraries {
		plan.ldflags = append(plan.ldflags, "-l"+lib)
	}

	if opts.MySQLConfig != "" {
		cflags, err := toolOutput(opts.MySQLConfig, "--cflags")
		if err != nil {
			return BuildError(b.Name(), result.Output, fmt.Errorf("%s --cflags: %w", opts.MySQLConfig, err))
		}
		libs, err := toolOutput(opts.MySQLConfig, "--libs")
		if err != nil {
			return BuildError(b.Name(), result.Output, fmt.Errorf("%s --libs: %w", opts.MySQLConfig, err))
		}
		plan.cflags = append(plan.cflags, strings.Fields(cflags)...)
		plan.ldflags = append(plan.ldflags, strings.Fields(libs)...)
	}

	plan.cflags = append(plan.cflags, opts.ExtraCompileArgs...)
	plan.ldflags = append(plan.ldflags, opts.ExtraLinkArgs...)

	for _, dir := range []string{plan.tempDir, plan.libDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if opts.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Compiler: %s, linker: %s", plan.compiler, plan.linker),
			fmt.Sprintf("Temporary directory: %s", plan.tempDir))
	}
	return nil
}

// compileAndLink compiles each source in order, then links the module
func (b *BuildExt) compileAndLink(ctx context.Context, plan *buildPlan, result *ExtensionResult) error {
	opts := plan.opts

	for _, src := range plan.ext.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		obj := objectPath(plan.tempDir, src)
		if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(obj), err)
		}

		compiler := plan.compiler
		if MatchesExtension(src, ".cc", ".cpp", ".cxx", ".c++") {
			compiler = plan.cxxCompiler
		}

		args := append([]string{}, plan.cflags...)
		args = append(args, "-c", opts.Path(src), "-o", obj)

		output, err := runTool(ctx, plan.env, compiler, args...)
		result.Output = append(result.Output, output...)
		if opts.Verbose {
			result.Output = append(result.Output, fmt.Sprintf("Running: %s %s", compiler, strings.Join(args, " ")))
		}
		if err != nil {
			return BuildError(b.Name(), result.Output, err)
		}
		plan.objects = append(plan.objects, obj)
	}

	args := append([]string{}, plan.objects...)
	args = append(args, plan.ldflags...)
	args = append(args, "-o", plan.artifact)

	output, err := runTool(ctx, plan.env, plan.linker, args...)
	result.Output = append(result.Output, output...)
	if opts.Verbose {
		result.Output = append(result.Output, fmt.Sprintf("Running: %s %s", plan.linker, strings.Join(args, " ")))
	}
	if err != nil {
		return BuildError(b.Name(), result.Output, err)
	}
	return nil
}

// findModule confirms the linker produced the module
func (b *BuildExt) findModule(plan *buildPlan) (string, error) {
	info, err := os.Stat(plan.artifact)
	if err != nil {
		return "", fmt.Errorf("module %s was not produced: %w", plan.ext.Name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("module %s is not a regular file", plan.artifact)
	}
	return plan.artifact, nil
}

// objectPath maps a source file to its object file below tempDir.
func objectPath(tempDir, src string) string {
	rel := safeRelativePath(filepath.FromSlash(src))
	return filepath.Join(tempDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".o")
}

func cCompiler(opts *setup.BuildOptions) string {
	if opts.CC != "" {
		return opts.CC
	}
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}
	return "cc"
}

func cxxCompiler(opts *setup.BuildOptions) string {
	if opts.CXX != "" {
		return opts.CXX
	}
	if cxx := os.Getenv("CXX"); cxx != "" {
		return cxx
	}
	return "c++"
}
