package cpydist

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

var packageFileExtensions = map[string]struct{}{
	".py":    {},
	".pyi":   {},
	".typed": {},
}

// InstallLib copies the pure packages and the built extension modules into the
// install directory.
type InstallLib struct{}

// Name returns the command name.
func (c *InstallLib) Name() string {
	return setup.CmdInstallLib
}

// Run builds the extensions if needed, then installs everything.
func (c *InstallLib) Run(ctx context.Context, dist *setup.Distribution) error {
	if err := dist.RunCommand(ctx, setup.CmdBuildExt); err != nil {
		return err
	}

	installDir := InstallDir(&dist.Options)
	desc := dist.Descriptor

	var installed []string

	for _, pkg := range desc.Packages {
		srcDir := dist.Options.Path(filepath.Join(desc.PackageDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))))
		files, err := packageFiles(srcDir)
		if err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}

		for _, name := range files {
			relDest := filepath.Join(strings.ReplaceAll(pkg, ".", string(filepath.Separator)), name)
			dest := filepath.Join(installDir, relDest)
			if err := copyFile(filepath.Join(srcDir, name), dest); err != nil {
				return fmt.Errorf("failed to install %s: %w", relDest, err)
			}
			installed = append(installed, dest)
		}
	}

	for _, module := range dist.OutputsOf(setup.CmdBuildExt) {
		if !isNativeLibrary(module) {
			continue
		}
		dest := filepath.Join(installDir, filepath.Base(module))
		if err := copyFile(module, dest); err != nil {
			return fmt.Errorf("failed to install %s: %w", filepath.Base(module), err)
		}
		installed = append(installed, dest)
	}

	for _, path := range uniqueStrings(installed) {
		dist.AddOutput(c.Name(), path)
	}
	dist.Log.WithField("dir", installDir).WithField("files", len(installed)).Info("installed library files")
	return nil
}

// InstallDir returns the directory packages are installed into.
func InstallDir(opts *setup.BuildOptions) string {
	if opts.InstallDir != "" {
		return opts.Path(opts.InstallDir)
	}
	return filepath.Join(opts.Path(opts.BuildDir), "install")
}

func packageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := packageFileExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

var nativeLibraryExtensions = map[string]struct{}{
	".so":    {},
	".pyd":   {},
	".dll":   {},
	".dylib": {},
}

func isNativeLibrary(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := nativeLibraryExtensions[ext]
	return ok
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func safeRelativePath(path string) string {
	clean := filepath.Clean(path)
	if clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return clean
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
