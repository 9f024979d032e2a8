package setup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Distribution is the toolchain side of one setup call.
//
// It owns the composed descriptor and the build options for the duration of
// the call and dispatches lifecycle commands through the descriptor's registry.
type Distribution struct {
	Descriptor *Descriptor
	Options    BuildOptions
	Log        logrus.FieldLogger

	ran     map[string]bool
	outputs []Output
}

// Output is a file produced by a command.
type Output struct {
	Command string
	Path    string
}

// NewDistribution creates a distribution for desc.
func NewDistribution(desc *Descriptor, opts BuildOptions, log logrus.FieldLogger) *Distribution {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Distribution{
		Descriptor: desc,
		Options:    opts.WithDefaults(),
		Log:        log,
		ran:        make(map[string]bool),
	}
}

// RunCommand runs the named command unless it already ran in this distribution.
func (d *Distribution) RunCommand(ctx context.Context, name string) error {
	if d.ran[name] {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmd Command
	if reg := d.Descriptor.Registry(); reg != nil {
		cmd, _ = reg.Lookup(name)
	}
	if cmd == nil {
		return fmt.Errorf("invalid command %q", name)
	}

	log := d.Log.WithField("command", name)
	log.Info("running")
	if err := cmd.Run(ctx, d); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	d.ran[name] = true
	log.Debug("finished")
	return nil
}

// HasRun reports whether the named command completed in this distribution.
func (d *Distribution) HasRun(name string) bool {
	return d.ran[name]
}

// AddOutput records a file produced by a command.
func (d *Distribution) AddOutput(command, path string) {
	d.outputs = append(d.outputs, Output{Command: command, Path: path})
}

// Outputs returns the files produced so far, in production order.
func (d *Distribution) Outputs() []Output {
	return append([]Output(nil), d.outputs...)
}

// OutputsOf returns the files produced by one command.
func (d *Distribution) OutputsOf(command string) []string {
	var paths []string
	for _, out := range d.outputs {
		if out.Command == command {
			paths = append(paths, out.Path)
		}
	}
	return paths
}

// Setup submits desc to the toolchain and runs the requested commands in order.
//
// Any command failure is returned wrapped with ErrComposition. Nothing is retried.
func Setup(ctx context.Context, desc *Descriptor, opts BuildOptions, commands []string, log logrus.FieldLogger) (*Distribution, error) {
	dist := NewDistribution(desc, opts, log)
	if len(commands) == 0 {
		return dist, fmt.Errorf("%w: no commands supplied", ErrComposition)
	}

	for _, name := range commands {
		if err := dist.RunCommand(ctx, name); err != nil {
			return dist, fmt.Errorf("%w: %w", ErrComposition, err)
		}
	}
	return dist, nil
}
