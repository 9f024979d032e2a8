package cpydist

import setup "github.com/contriboss/connector-setup"

// optional holds commands whose implementation is only compiled in on some builds.
var optional = map[string]setup.Command{}

func registerOptional(cmd setup.Command) {
	optional[cmd.Name()] = cmd
}

// Required returns the overrides every connector package registers.
func Required() []setup.Command {
	return []setup.Command{
		&BuildExt{},
		&Install{},
		&InstallLib{},
		&DistSource{},
		&DistBinary{},
		&DistSolaris{},
	}
}

// Lookup probes for an optional command such as bdist_wheel.
//
// It satisfies setup.CapabilityLookup.
func Lookup(name string) (setup.Command, bool) {
	cmd, ok := optional[name]
	return cmd, ok
}
