package cli

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	setup "github.com/contriboss/connector-setup"
)

func testProject() *setup.Project {
	return &setup.Project{
		Name:          "demo-connector",
		Description:   "Demo driver",
		Author:        "Demo Authors",
		License:       "GPLv2",
		VersionFile:   "lib/demo/version.toml",
		PackageRoot:   "lib",
		Extras:        map[string][]string{"compression": {"lz4>=2.1.6,<=4.3.2"}},
		MetadataFiles: []string{"README.txt", "LICENSE.txt"},
	}
}

// newWorkspace lays out <tmp>/{README.txt,LICENSE.txt} and a build root at <tmp>/pkg.
func newWorkspace(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	root := filepath.Join(tmp, "pkg")

	write := func(path, content string) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pkg := filepath.Join(root, "lib", "demo")
	write(filepath.Join(tmp, "README.txt"), "readme")
	write(filepath.Join(tmp, "LICENSE.txt"), "license")
	write(filepath.Join(pkg, "__init__.py"), "")
	write(filepath.Join(pkg, "version.toml"), "version_text = \"1.2.3\"\n")
	write(filepath.Join(pkg, "cursor.py"), "class Cursor: pass\n")
	write(filepath.Join(pkg, "cursor.cpython.pyc"), "bytecode")
	return root
}

func execute(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(app)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func tarNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	return names
}

func TestSdistRun(t *testing.T) {
	root := newWorkspace(t)
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	_, stderr, err := execute(t, app, "--root", root, "--no-color", "sdist")
	if err != nil {
		t.Fatalf("sdist failed: %v\n%s", err, stderr)
	}

	archive := filepath.Join(root, "dist", "demo-connector-1.2.3.tar.gz")
	want := []string{
		"demo-connector-1.2.3/LICENSE.txt",
		"demo-connector-1.2.3/PKG-INFO",
		"demo-connector-1.2.3/README.txt",
		"demo-connector-1.2.3/lib/demo/__init__.py",
		"demo-connector-1.2.3/lib/demo/cursor.py",
		"demo-connector-1.2.3/lib/demo/version.toml",
	}
	if diff := cmp.Diff(want, tarNames(t, archive)); diff != "" {
		t.Errorf("archive contents mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{"README.txt", "LICENSE.txt"} {
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Errorf("%s still staged in build root after run", name)
		}
	}
	if !strings.Contains(stderr, "wrote source distribution") {
		t.Errorf("expected sdist log line, got:\n%s", stderr)
	}
}

func TestEnvironmentOverridesDistDir(t *testing.T) {
	root := newWorkspace(t)
	t.Setenv("DEMO_CONNECTOR_DIST_DIR", "out")
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	if _, stderr, err := execute(t, app, "--root", root, "--no-color", "sdist"); err != nil {
		t.Fatalf("sdist failed: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "demo-connector-1.2.3.tar.gz")); err != nil {
		t.Errorf("expected archive in env-selected dist dir: %v", err)
	}
}

func TestConfigFileSelectsFormat(t *testing.T) {
	root := newWorkspace(t)
	if err := os.WriteFile(filepath.Join(root, "setup.toml"), []byte("formats = \"xztar\"\nlabel = \"commercial\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	if _, stderr, err := execute(t, app, "--root", root, "--no-color", "sdist"); err != nil {
		t.Fatalf("sdist failed: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "demo-connector-commercial-1.2.3.tar.xz")); err != nil {
		t.Errorf("expected xz archive from config file: %v", err)
	}
}

func TestEnvironmentRootLocatesConfigFile(t *testing.T) {
	root := newWorkspace(t)
	if err := os.WriteFile(filepath.Join(root, "setup.toml"), []byte("formats = \"xztar\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEMO_CONNECTOR_ROOT", root)
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	if _, stderr, err := execute(t, app, "--no-color", "sdist"); err != nil {
		t.Fatalf("sdist failed: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "demo-connector-1.2.3.tar.xz")); err != nil {
		t.Errorf("expected xz archive from config file in env-selected root: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	root := newWorkspace(t)
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	_, _, err := execute(t, app, "--root", root, "--no-color", "bdist_rpm")
	if !errors.Is(err, setup.ErrComposition) {
		t.Fatalf("expected ErrComposition, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "README.txt")); !os.IsNotExist(err) {
		t.Error("README.txt left behind after failed run")
	}
}

func TestDescribe(t *testing.T) {
	root := newWorkspace(t)
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	stdout, stderr, err := execute(t, app, "--root", root, "describe")
	if err != nil {
		t.Fatalf("describe failed: %v\n%s", err, stderr)
	}

	var got struct {
		Name     string              `yaml:"name"`
		Version  string              `yaml:"version"`
		Packages []string            `yaml:"packages"`
		Commands []string            `yaml:"cmdclass"`
		Extras   map[string][]string `yaml:"extras_require"`
	}
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("describe output is not YAML: %v\n%s", err, stdout)
	}

	if got.Name != "demo-connector" || got.Version != "1.2.3" {
		t.Errorf("got %s %s, want demo-connector 1.2.3", got.Name, got.Version)
	}
	if diff := cmp.Diff([]string{"demo"}, got.Packages); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"lz4>=2.1.6,<=4.3.2"}, got.Extras["compression"]); diff != "" {
		t.Errorf("extras mismatch (-want +got):\n%s", diff)
	}
	if len(got.Commands) < len(setup.RequiredCommands) {
		t.Errorf("cmdclass = %v, want at least the required overrides", got.Commands)
	}

	if _, err := os.Stat(filepath.Join(root, "README.txt")); !os.IsNotExist(err) {
		t.Error("describe must not stage metadata files")
	}
}

func TestCommandsListsRequired(t *testing.T) {
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	stdout, _, err := execute(t, app, "--root", t.TempDir(), "commands")
	if err != nil {
		t.Fatalf("commands failed: %v", err)
	}

	listed := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		listed[line] = true
	}
	for _, name := range setup.RequiredCommands {
		if !listed[name] {
			t.Errorf("command %s not listed", name)
		}
	}
}

func TestMissingVersionFile(t *testing.T) {
	root := newWorkspace(t)
	if err := os.Remove(filepath.Join(root, "lib", "demo", "version.toml")); err != nil {
		t.Fatal(err)
	}
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}

	_, _, err := execute(t, app, "--root", root, "--no-color", "sdist")
	if !errors.Is(err, setup.ErrMissingVersionFile) {
		t.Fatalf("expected ErrMissingVersionFile, got %v", err)
	}
}

func TestExecuteExitCode(t *testing.T) {
	app := &App{Project: testProject(), EnvPrefix: "DEMO_CONNECTOR"}
	if code := Execute(context.Background(), app, []string{"--root", t.TempDir(), "--no-color", "sdist"}); code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
}
