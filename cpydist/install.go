package cpydist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

// Install installs the library and records every installed file.
//
// The record goes to the configured record file, or build/installed_files.txt.
type Install struct{}

// Name returns the command name.
func (c *Install) Name() string {
	return setup.CmdInstall
}

// Run installs the library and writes the record.
func (c *Install) Run(ctx context.Context, dist *setup.Distribution) error {
	if err := dist.RunCommand(ctx, setup.CmdInstallLib); err != nil {
		return err
	}

	record := RecordFile(&dist.Options)
	installed := dist.OutputsOf(setup.CmdInstallLib)

	if err := os.MkdirAll(filepath.Dir(record), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(record), err)
	}

	content := strings.Join(installed, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(record, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write install record: %w", err)
	}

	dist.AddOutput(c.Name(), record)
	dist.Log.WithField("record", record).Info("wrote install record")
	return nil
}

// RecordFile returns the path of the install record.
func RecordFile(opts *setup.BuildOptions) string {
	if opts.RecordFile != "" {
		return opts.Path(opts.RecordFile)
	}
	return filepath.Join(opts.Path(opts.BuildDir), "installed_files.txt")
}
