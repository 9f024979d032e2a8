package cpydist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	setup "github.com/contriboss/connector-setup"
)

// DistSolaris builds an SVR4 package for Solaris with pkgmk and pkgtrans.
//
// The library is installed below build/bdist.solaris/root/<prefix>, a pkginfo and
// a prototype file mapping each file to <prefix> are generated next to it, and
// the spooled package is translated into dist/<name>-<version>-solaris.pkg.
type DistSolaris struct {
	// Prefix is the install location on the target system.
	Prefix string
	// Category is the pkginfo CATEGORY value.
	Category string
}

// Name returns the command name.
func (c *DistSolaris) Name() string {
	return setup.CmdBdistSolaris
}

// RequiredTools returns the SVR4 packaging tools.
func (c *DistSolaris) RequiredTools(opts *setup.BuildOptions) []ToolRequirement {
	return []ToolRequirement{
		{Name: "pkgmk", Purpose: "SVR4 package builder"},
		{Name: "pkgtrans", Purpose: "SVR4 package translator"},
	}
}

// CheckTools verifies that pkgmk and pkgtrans are available.
func (c *DistSolaris) CheckTools(opts *setup.BuildOptions) error {
	return CheckRequiredTools(c.RequiredTools(opts))
}

// Run installs the library and spools it into a Solaris package.
func (c *DistSolaris) Run(ctx context.Context, dist *setup.Distribution) error {
	opts := &dist.Options
	desc := dist.Descriptor

	if err := c.CheckTools(opts); err != nil {
		return fmt.Errorf("packaging tools missing: %w", err)
	}

	work := filepath.Join(opts.Path(opts.BuildDir), "bdist.solaris")
	root := filepath.Join(work, "root")
	installDir, err := installInto(ctx, dist, filepath.Join(root, strings.TrimPrefix(c.prefix(), "/")))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(work, 0o755); err != nil {
		return err
	}

	pkgName := solarisPackageName(desc.Name)
	pkginfo := filepath.Join(work, "pkginfo")
	if err := os.WriteFile(pkginfo, []byte(c.pkgInfo(desc, pkgName)), 0o644); err != nil {
		return fmt.Errorf("failed to write pkginfo: %w", err)
	}

	files, err := entriesBelow(installDir, strings.TrimPrefix(c.prefix(), "/"), dist.OutputsOf(setup.CmdInstallLib))
	if err != nil {
		return err
	}
	prototype := filepath.Join(work, "prototype")
	if err := os.WriteFile(prototype, []byte(c.prototype(pkginfo, files)), 0o644); err != nil {
		return fmt.Errorf("failed to write prototype: %w", err)
	}

	spool := filepath.Join(work, "spool")
	if err := os.MkdirAll(spool, 0o755); err != nil {
		return err
	}

	output, err := runTool(ctx, nil, "pkgmk", "-o", "-d", spool, "-f", prototype)
	if err != nil {
		return BuildError(c.Name(), output, err)
	}

	distDir := opts.Path(opts.DistDir)
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(distDir, fmt.Sprintf("%s-solaris.pkg", archiveBase(desc, opts.Label)))
	output, err = runTool(ctx, nil, "pkgtrans", "-s", spool, dest, pkgName)
	if err != nil {
		return BuildError(c.Name(), output, err)
	}

	dist.AddOutput(c.Name(), dest)
	dist.Log.WithFields(logrus.Fields{"package": dest, "install_dir": installDir}).Info("wrote solaris package")
	return nil
}

func (c *DistSolaris) prefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return "/usr/lib/python3/site-packages"
}

func (c *DistSolaris) pkgInfo(desc *setup.Descriptor, pkgName string) string {
	category := c.Category
	if category == "" {
		category = "application"
	}

	lines := []string{
		"PKG=" + pkgName,
		"NAME=" + desc.Description,
		"VERSION=" + desc.Version,
		"ARCH=" + solarisArch(),
		"CATEGORY=" + category,
		"BASEDIR=/",
		"VENDOR=" + desc.Author,
		"DESC=" + desc.Name,
		"PSTAMP=" + time.Now().UTC().Format("20060102150405"),
		"CLASSES=none",
	}
	return strings.Join(lines, "\n") + "\n"
}

// prototype renders the pkgmk prototype file for the installed files.
func (c *DistSolaris) prototype(pkginfo string, files []archiveEntry) string {
	dirs := make(map[string]bool)
	for _, f := range files {
		for dir := filepath.Dir(f.Name); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
			dirs[filepath.ToSlash(dir)] = true
		}
	}

	sortedDirs := make([]string, 0, len(dirs))
	for dir := range dirs {
		sortedDirs = append(sortedDirs, dir)
	}
	sort.Strings(sortedDirs)

	sorted := append([]archiveEntry(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "i pkginfo=%s\n", pkginfo)
	for _, dir := range sortedDirs {
		fmt.Fprintf(&b, "d none /%s 0755 root bin\n", dir)
	}
	for _, f := range sorted {
		mode := "0644"
		if isNativeLibrary(f.Name) {
			mode = "0755"
		}
		fmt.Fprintf(&b, "f none /%s=%s %s root bin\n", filepath.ToSlash(f.Name), f.Src, mode)
	}
	return b.String()
}

// solarisPackageName derives the package abbreviation, e.g. "mysql-connector-python" -> "MYSQLcpy".
// The first part is upper-cased, middle parts contribute their initial and the
// last part its first two letters.
func solarisPackageName(name string) string {
	parts := strings.Split(name, "-")
	var b strings.Builder
	b.WriteString(strings.ToUpper(parts[0]))
	for i, part := range parts[1:] {
		n := 1
		if i == len(parts)-2 {
			n = 2
		}
		if len(part) < n {
			n = len(part)
		}
		b.WriteString(part[:n])
	}
	return b.String()
}

func solarisArch() string {
	switch runtime.GOARCH {
	case "amd64", "386":
		return "i386"
	}
	return "sparc"
}
