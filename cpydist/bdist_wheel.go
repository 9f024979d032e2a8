//go:build !nowheel

package cpydist

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	setup "github.com/contriboss/connector-setup"
)

func init() {
	registerOptional(&DistWheel{})
}

// DistWheel builds a platform wheel.
//
// Building with the nowheel tag leaves this command out, and the package
// registry then has no bdist_wheel entry.
type DistWheel struct{}

// Name returns the command name.
func (c *DistWheel) Name() string {
	return setup.CmdBdistWheel
}

// Run installs into build/bdist.<plat>/wheel, adds the .dist-info files and
// zips everything into dist/<name>-<version>-<py>-<abi>-<plat>.whl.
func (c *DistWheel) Run(ctx context.Context, dist *setup.Distribution) error {
	opts := &dist.Options
	desc := dist.Descriptor

	root := filepath.Join(opts.Path(opts.BuildDir), "bdist."+PlatformName(opts), "wheel")
	installDir, err := installInto(ctx, dist, root)
	if err != nil {
		return err
	}

	entries, err := entriesBelow(installDir, "", dist.OutputsOf(setup.CmdInstallLib))
	if err != nil {
		return err
	}

	tag := WheelTag(desc, opts)
	distInfo := fmt.Sprintf("%s-%s.dist-info", wheelName(desc.Name), desc.Version)
	infoDir := filepath.Join(opts.Path(opts.BuildDir), "bdist."+PlatformName(opts), distInfo)
	if err := os.MkdirAll(infoDir, 0o755); err != nil {
		return err
	}

	generated := map[string]string{
		"METADATA": pkgInfo(desc),
		"WHEEL":    wheelInfo(tag, len(desc.Extensions) == 0),
	}
	for _, name := range []string{"METADATA", "WHEEL"} {
		file := filepath.Join(infoDir, name)
		if err := os.WriteFile(file, []byte(generated[name]), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		entries = append(entries, archiveEntry{Src: file, Name: filepath.Join(distInfo, name)})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dest := filepath.Join(opts.Path(opts.DistDir),
		fmt.Sprintf("%s-%s-%s.whl", wheelName(desc.Name), desc.Version, tag))
	if err := writeWheel(dest, path.Join(distInfo, "RECORD"), entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	dist.AddOutput(c.Name(), dest)
	dist.Log.WithField("wheel", dest).Info("wrote wheel")
	return nil
}

// WheelTag returns the "<py>-<abi>-<plat>" compatibility tag.
//
// Pure packages get py3-none-any.
func WheelTag(desc *setup.Descriptor, opts *setup.BuildOptions) string {
	if len(desc.Extensions) == 0 {
		return "py3-none-any"
	}
	py := opts.PythonTag
	if py == "" {
		py = "cp3"
	}
	return fmt.Sprintf("%s-%s-%s", py, py, WheelPlatform(PlatformName(opts)))
}

func wheelName(name string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

// wheelInfo renders the WHEEL file. A wheel without native modules installs
// into purelib.
func wheelInfo(tag string, pure bool) string {
	return strings.Join([]string{
		"Wheel-Version: 1.0",
		"Generator: connector-setup",
		fmt.Sprintf("Root-Is-Purelib: %t", pure),
		"Tag: " + tag,
	}, "\n") + "\n"
}

// writeWheel zips entries and appends a RECORD with a sha256 digest per file.
func writeWheel(dest, record string, entries []archiveEntry) (err error) {
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

	zw := zip.NewWriter(f)

	sorted := append([]archiveEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var rows []string
	for _, entry := range sorted {
		name := filepath.ToSlash(entry.Name)
		digest, size, err := addZipFile(zw, entry.Src, name)
		if err != nil {
			zw.Close()
			return err
		}
		rows = append(rows, fmt.Sprintf("%s,sha256=%s,%d", name, digest, size))
	}
	rows = append(rows, record+",,")

	w, err := zw.Create(record)
	if err != nil {
		zw.Close()
		return err
	}
	if _, err := io.WriteString(w, strings.Join(rows, "\n")+"\n"); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

func addZipFile(zw *zip.Writer, src, name string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", 0, err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return "", 0, err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return "", 0, err
	}

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(w, h), in)
	if err != nil {
		return "", 0, err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), size, nil
}
