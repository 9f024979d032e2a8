package cpydist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

var headerExtensions = []string{".h", ".hh", ".hpp", ".hxx", ".inc"}

// DistSource writes the source distribution archive.
//
// The archive holds the staged metadata files, a generated PKG-INFO, every file
// of the declared packages, the extension sources and the headers found in the
// extension include directories.
type DistSource struct{}

// Name returns the command name.
func (c *DistSource) Name() string {
	return setup.CmdSdist
}

// Run writes dist/<name>-<version>.tar.gz, or .tar.xz with the xztar format.
func (c *DistSource) Run(ctx context.Context, dist *setup.Distribution) error {
	opts := &dist.Options
	desc := dist.Descriptor

	suffix, err := archiveSuffix(opts.Formats)
	if err != nil {
		return err
	}

	entries, err := c.manifest(desc, opts)
	if err != nil {
		return err
	}

	base := archiveBase(desc, opts.Label)
	pkgInfoPath := filepath.Join(opts.Path(opts.BuildDir), "sdist", "PKG-INFO")
	if err := os.MkdirAll(filepath.Dir(pkgInfoPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(pkgInfoPath, []byte(pkgInfo(desc)), 0o644); err != nil {
		return fmt.Errorf("failed to write PKG-INFO: %w", err)
	}
	entries = append(entries, archiveEntry{Src: pkgInfoPath, Name: "PKG-INFO"})

	for i := range entries {
		entries[i].Name = filepath.Join(base, entries[i].Name)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dest := filepath.Join(opts.Path(opts.DistDir), base+suffix)
	if err := writeTarball(dest, opts.Formats, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	dist.AddOutput(c.Name(), dest)
	dist.Log.WithField("archive", dest).WithField("files", len(entries)).Info("wrote source distribution")
	return nil
}

// manifest lists the files that go into the source distribution, with names
// relative to the build root.
func (c *DistSource) manifest(desc *setup.Descriptor, opts *setup.BuildOptions) ([]archiveEntry, error) {
	var entries []archiveEntry
	seen := make(map[string]bool)

	add := func(rel string) {
		rel = filepath.Clean(filepath.FromSlash(rel))
		if seen[rel] {
			return
		}
		seen[rel] = true
		entries = append(entries, archiveEntry{Src: opts.Path(rel), Name: rel})
	}

	for _, name := range desc.MetadataFiles {
		if _, err := os.Stat(opts.Path(name)); err != nil {
			return nil, fmt.Errorf("manifest entry %s is missing from the build root: %w", name, err)
		}
		add(name)
	}

	for _, pkg := range desc.Packages {
		rel := filepath.Join(desc.PackageDir, strings.ReplaceAll(pkg, ".", string(filepath.Separator)))
		dirEntries, err := os.ReadDir(opts.Path(rel))
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg, err)
		}
		for _, entry := range dirEntries {
			if entry.Type().IsRegular() && !MatchesExtension(entry.Name(), ".pyc", ".pyo") {
				add(filepath.Join(rel, entry.Name()))
			}
		}
	}

	for _, ext := range desc.Extensions {
		for _, src := range ext.Sources {
			if _, err := os.Stat(opts.Path(src)); err != nil {
				return nil, fmt.Errorf("extension %s: source %s: %w", ext.Name, src, err)
			}
			add(src)
		}
		for _, dir := range ext.IncludeDirs {
			headers, err := findHeaders(opts.Path(dir))
			if err != nil {
				return nil, fmt.Errorf("extension %s: include dir %s: %w", ext.Name, dir, err)
			}
			for _, header := range headers {
				add(filepath.Join(dir, header))
			}
		}
	}

	return entries, nil
}

// findHeaders walks dir and returns header files relative to it.
func findHeaders(dir string) ([]string, error) {
	var headers []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !MatchesExtension(d.Name(), headerExtensions...) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		headers = append(headers, rel)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return headers, err
}
