package cpydist

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ulikunitz/xz"

	setup "github.com/contriboss/connector-setup"
)

// Archive formats accepted by the formats option.
const (
	FormatGzTar = "gztar"
	FormatXzTar = "xztar"
)

// archiveEntry maps a file on disk to its name inside an archive.
type archiveEntry struct {
	Src  string
	Name string
}

func archiveSuffix(format string) (string, error) {
	switch format {
	case "", FormatGzTar:
		return ".tar.gz", nil
	case FormatXzTar:
		return ".tar.xz", nil
	default:
		return "", fmt.Errorf("unsupported archive format %q", format)
	}
}

// writeTarball writes entries into a compressed tar archive at dest.
//
// Entries are written sorted by name so archives are reproducible.
func writeTarball(dest, format string, entries []archiveEntry) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	var compressed io.WriteCloser
	switch format {
	case "", FormatGzTar:
		compressed = gzip.NewWriter(f)
	case FormatXzTar:
		xw, xzErr := xz.NewWriter(f)
		if xzErr != nil {
			return fmt.Errorf("failed to create xz writer: %w", xzErr)
		}
		compressed = xw
	default:
		return fmt.Errorf("unsupported archive format %q", format)
	}

	tw := tar.NewWriter(compressed)

	sorted := append([]archiveEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, entry := range sorted {
		if err := addTarFile(tw, entry); err != nil {
			tw.Close()
			compressed.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		compressed.Close()
		return err
	}
	return compressed.Close()
}

func addTarFile(tw *tar.Writer, entry archiveEntry) error {
	info, err := os.Stat(entry.Src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", entry.Src)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(entry.Name)
	hdr.Uname, hdr.Gname = "", ""
	hdr.Uid, hdr.Gid = 0, 0

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	in, err := os.Open(entry.Src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(tw, in)
	return err
}

// installInto runs install_lib with root as the install directory, unless the
// library was already installed in this run, and returns the directory used.
func installInto(ctx context.Context, dist *setup.Distribution, root string) (string, error) {
	if !dist.HasRun(setup.CmdInstallLib) {
		dist.Options.InstallDir = root
	}
	if err := dist.RunCommand(ctx, setup.CmdInstallLib); err != nil {
		return "", err
	}
	return InstallDir(&dist.Options), nil
}

// entriesBelow maps installed files to archive names relative to base, under prefix.
func entriesBelow(base, prefix string, files []string) ([]archiveEntry, error) {
	entries := make([]archiveEntry, 0, len(files))
	for _, file := range files {
		rel, err := filepath.Rel(base, file)
		if err != nil {
			return nil, fmt.Errorf("%s is outside %s: %w", file, base, err)
		}
		entries = append(entries, archiveEntry{Src: file, Name: filepath.Join(prefix, rel)})
	}
	return entries, nil
}
