package setup

import (
	"fmt"
	"sort"
	"strings"
)

// CommandRegistry maps lifecycle command names to their overriding implementations.
//
// Registration is two-phase: the mandatory overrides are passed to
// NewCommandRegistry, then optional ones are added with RegisterOptional when
// their implementation can be obtained.
//
//	registry := setup.NewCommandRegistry(cpydist.Required()...)
//	registry.RegisterOptional(setup.CmdBdistWheel, cpydist.Lookup)
//
// Registering a name twice replaces the earlier command.
//
// # Thread Safety
//
// CommandRegistry is NOT thread-safe for registration.
// Register all commands before handing the registry to the toolchain.
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a registry holding the given commands.
func NewCommandRegistry(commands ...Command) *CommandRegistry {
	r := &CommandRegistry{commands: make(map[string]Command, len(commands)+1)}
	for _, cmd := range commands {
		r.Register(cmd)
	}
	return r
}

// Register adds cmd under its name, replacing any earlier registration.
func (r *CommandRegistry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// RegisterOptional registers the command returned by lookup, if there is one.
//
// Returns true when the command was registered.
func (r *CommandRegistry) RegisterOptional(name string, lookup CapabilityLookup) bool {
	if lookup == nil {
		return false
	}
	cmd, ok := lookup(name)
	if !ok || cmd == nil {
		return false
	}
	r.commands[name] = cmd
	return true
}

// Lookup returns the command registered under name.
func (r *CommandRegistry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names in sorted order.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *CommandRegistry) Len() int {
	return len(r.commands)
}

// Validate checks that every required command is registered.
func (r *CommandRegistry) Validate() error {
	var missing []string
	for _, name := range RequiredCommands {
		if _, ok := r.commands[name]; !ok {
			missing = append(missing, name)
		}
	}

	switch len(missing) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("required command %s is not registered", missing[0])
	default:
		return fmt.Errorf("missing required commands: %s", strings.Join(missing, ", "))
	}
}
