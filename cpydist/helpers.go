package cpydist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/magefile/mage/sh"

	setup "github.com/contriboss/connector-setup"
)

// MatchesExtension checks if a filename has any of the given extensions.
//
// The check is case-insensitive and works with or without the leading dot:
//
//	if MatchesExtension(src, ".cc", ".cpp") {
//	    // compile with the C++ driver
//	}
func MatchesExtension(filename string, extensions ...string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// BuildError creates a standardized build error with output context.
//
// With error and output:
//
//	build_ext build failed: exit status 1
//
//	Build output:
//	src/mysql_capi.c:12:10: fatal error: mysql.h: No such file or directory
func BuildError(command string, output []string, err error) error {
	outputStr := strings.TrimSpace(strings.Join(output, "\n"))

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s build failed: %v", command, err)
	} else {
		prefix = fmt.Sprintf("%s build failed", command)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

// runTool executes a tool and returns its combined output split into lines.
//
// The process is killed when ctx is canceled. env entries are added on top of
// the current environment. Swapped in tests so no compiler is needed.
var runTool = func(ctx context.Context, env map[string]string, name string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	for key, value := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return splitLines(out.String()), ctxErr
	}
	return splitLines(out.String()), err
}

// toolOutput runs a query tool such as mysql_config and returns its trimmed stdout.
var toolOutput = func(name string, args ...string) (string, error) {
	return sh.Output(name, args...)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

var archNames = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm64":   "aarch64",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
}

// PlatformName returns the distutils-style platform name, e.g. "linux-x86_64".
func PlatformName(opts *setup.BuildOptions) string {
	if opts != nil && opts.PlatformTag != "" {
		return opts.PlatformTag
	}
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) string {
	arch, ok := archNames[goarch]
	if !ok {
		arch = goarch
	}

	switch goos {
	case "windows":
		switch goarch {
		case "386":
			return "win32"
		case "arm64":
			return "win-arm64"
		}
		return "win-amd64"
	case "darwin":
		if goarch == "arm64" {
			arch = "arm64"
		}
		return "macosx-11.0-" + arch
	case "solaris":
		if goarch == "amd64" {
			arch = "i86pc"
		}
		return "solaris-2.11-" + arch
	}
	return goos + "-" + arch
}

// WheelPlatform converts a platform name into a wheel platform tag.
func WheelPlatform(platform string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(platform)
}

// extSuffix is the filename suffix of a built extension module.
func extSuffix() string {
	if runtime.GOOS == "windows" {
		return ".pyd"
	}
	return ".so"
}

// archiveBase is the "<name>-<version>" stem shared by all distribution files.
func archiveBase(desc *setup.Descriptor, label string) string {
	name := desc.Name
	if label != "" {
		name = fmt.Sprintf("%s-%s", name, label)
	}
	return fmt.Sprintf("%s-%s", name, desc.Version)
}
