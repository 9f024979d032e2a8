package cpydist

import (
	"context"
	"fmt"
	"path/filepath"

	setup "github.com/contriboss/connector-setup"
)

// DistBinary writes a dumb binary distribution: the installed tree archived as
// dist/<name>-<version>.<plat>.tar.gz.
type DistBinary struct{}

// Name returns the command name.
func (c *DistBinary) Name() string {
	return setup.CmdBdist
}

// Run installs into build/bdist.<plat>/root and archives the result.
func (c *DistBinary) Run(ctx context.Context, dist *setup.Distribution) error {
	opts := &dist.Options
	platform := PlatformName(opts)

	suffix, err := archiveSuffix(opts.Formats)
	if err != nil {
		return err
	}

	root := filepath.Join(opts.Path(opts.BuildDir), "bdist."+platform, "root")
	installDir, err := installInto(ctx, dist, root)
	if err != nil {
		return err
	}

	entries, err := entriesBelow(installDir, "", dist.OutputsOf(setup.CmdInstallLib))
	if err != nil {
		return err
	}

	dest := filepath.Join(opts.Path(opts.DistDir),
		fmt.Sprintf("%s.%s%s", archiveBase(dist.Descriptor, opts.Label), platform, suffix))
	if err := writeTarball(dest, opts.Formats, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	dist.AddOutput(c.Name(), dest)
	dist.Log.WithField("archive", dest).Info("wrote binary distribution")
	return nil
}
