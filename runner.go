package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Runner drives one orchestrated setup invocation for a project.
//
// A run loads the version declaration, stages the metadata files, composes the
// descriptor, submits it to the toolchain and finally removes the staged files.
// Removal happens on every exit path, including a failed composition or a panic.
type Runner struct {
	Project  *Project
	Registry *CommandRegistry
	Options  BuildOptions
	Log      logrus.FieldLogger
}

// Describe composes the descriptor without staging files or running commands.
func (r *Runner) Describe(ctx context.Context) (*Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	version, err := LoadVersion(r.root(r.Project.VersionFile))
	if err != nil {
		return nil, err
	}
	return r.compose(version)
}

// Run executes the requested lifecycle commands.
//
// Error precedence: a composition failure is always the reported error; an
// unstaging failure is only reported when composition succeeded, otherwise it
// is logged.
func (r *Runner) Run(ctx context.Context, commands []string) (err error) {
	log := r.logger()

	// Loaded before staging so a missing declaration leaves the root untouched.
	version, err := LoadVersion(r.root(r.Project.VersionFile))
	if err != nil {
		return err
	}
	log = log.WithField("version", version.Text)

	stager := NewMetadataStager(r.Options.WithDefaults().Root, r.Project.MetadataFiles, log)
	if err := stager.Stage(); err != nil {
		return err
	}
	defer func() {
		unstageErr := stager.Unstage()
		if unstageErr == nil {
			return
		}
		if err != nil {
			log.WithError(unstageErr).Warn("failed to remove staged metadata files")
			return
		}
		err = unstageErr
	}()

	desc, err := r.compose(version)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrComposition, err)
	}

	log.WithField("commands", commands).Info("composing package")
	dist, err := Setup(ctx, desc, r.Options, commands, log)
	if err != nil {
		return err
	}

	for _, out := range dist.Outputs() {
		log.WithFields(logrus.Fields{"command": out.Command, "file": out.Path}).Debug("produced")
	}
	return nil
}

func (r *Runner) compose(version *VersionInfo) (*Descriptor, error) {
	var packages []string
	if r.Project.PackageRoot != "" {
		found, err := FindPackages(r.root(r.Project.PackageRoot))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		packages = found
	}
	return Compose(r.Project, version, r.Registry, packages)
}

func (r *Runner) root(rel string) string {
	opts := r.Options.WithDefaults()
	return filepath.Join(opts.Root, rel)
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger().WithField("package", r.Project.Name)
	}
	return r.Log.WithField("package", r.Project.Name)
}
