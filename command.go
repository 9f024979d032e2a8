package setup

import "context"

// Lifecycle command names understood by the toolchain.
const (
	CmdBuildExt     = "build_ext"
	CmdInstall      = "install"
	CmdInstallLib   = "install_lib"
	CmdSdist        = "sdist"
	CmdBdist        = "bdist"
	CmdBdistSolaris = "bdist_solaris"
	CmdBdistWheel   = "bdist_wheel"
)

// RequiredCommands lists the overrides every registry must carry.
var RequiredCommands = []string{
	CmdBuildExt,
	CmdInstall,
	CmdInstallLib,
	CmdSdist,
	CmdBdist,
	CmdBdistSolaris,
}

// Command is one build-lifecycle step the toolchain can run.
//
// Implementations replace the toolchain default for the command returned by Name.
//
// # Example Implementation
//
//	type CleanCommand struct{}
//
//	func (c *CleanCommand) Name() string {
//	    return "clean"
//	}
//
//	func (c *CleanCommand) Run(ctx context.Context, dist *setup.Distribution) error {
//	    return os.RemoveAll(dist.Options.Path(dist.Options.BuildDir))
//	}
//
// A command that depends on another one asks the distribution to run it:
//
//	if err := dist.RunCommand(ctx, setup.CmdBuildExt); err != nil {
//	    return err
//	}
//
// Each command runs at most once per distribution.
type Command interface {
	// Name returns the lifecycle command name, e.g. "build_ext".
	Name() string

	// Run executes the command against the composed distribution.
	Run(ctx context.Context, dist *Distribution) error
}

// CapabilityLookup probes for an optional command implementation.
type CapabilityLookup func(name string) (Command, bool)
