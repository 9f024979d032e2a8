// Package setup orchestrates building and packaging of native-extension-backed
// connector libraries.
//
// It is the Go counterpart of a setup script: a project declares its identity,
// its native extensions and its optional dependency groups, and a Runner turns
// that declaration into a package descriptor and runs lifecycle commands
// (build_ext, install, sdist, bdist, bdist_wheel, ...) against it.
//
// # Basic Usage
//
//	registry := setup.NewCommandRegistry(cpydist.Required()...)
//	registry.RegisterOptional(setup.CmdBdistWheel, cpydist.Lookup)
//
//	runner := &setup.Runner{
//	    Project:  project,
//	    Registry: registry,
//	    Options:  setup.BuildOptions{Root: "."},
//	}
//	err := runner.Run(ctx, []string{"sdist", "bdist_wheel"})
//
// # Run Sequence
//
//  1. LoadVersion reads the TOML version declaration
//  2. MetadataStager copies README, LICENSE and friends from the parent directory
//  3. Compose builds the Descriptor
//  4. Setup dispatches the requested commands through the CommandRegistry
//  5. The staged metadata files are removed, whatever happened in steps 3-4
//
// # Architecture
//
//	Runner
//	├── LoadVersion       (version.toml)
//	├── MetadataStager    (README.txt, LICENSE.txt, ...)
//	├── Compose           (Project + VersionInfo -> Descriptor)
//	└── Distribution      (CommandRegistry -> Command.Run)
//
// Command implementations live in the cpydist package.
package setup
