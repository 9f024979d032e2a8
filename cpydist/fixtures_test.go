package cpydist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	setup "github.com/contriboss/connector-setup"
)

type toolCall struct {
	Name string
	Args []string
}

// fakeTools stands in for the compilers and packaging tools.
//
// Every call is recorded. A "-o <file>" argument is created as an empty file so
// that later steps find the compiler and linker outputs.
type fakeTools struct {
	calls   []toolCall
	fail    map[string]error
	missing map[string]bool
}

func installFakeTools(t *testing.T) *fakeTools {
	t.Helper()
	ft := &fakeTools{fail: map[string]error{}, missing: map[string]bool{}}

	origRun, origOutput, origLookPath := runTool, toolOutput, execLookPath
	t.Cleanup(func() {
		runTool, toolOutput, execLookPath = origRun, origOutput, origLookPath
	})

	runTool = func(ctx context.Context, env map[string]string, name string, args ...string) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ft.calls = append(ft.calls, toolCall{Name: name, Args: append([]string(nil), args...)})
		if err := ft.fail[name]; err != nil {
			return []string{fmt.Sprintf("%s: fatal error", name)}, err
		}

		var produced string
		switch name {
		case "pkgmk":
		case "pkgtrans":
			if len(args) >= 3 {
				produced = args[2]
			}
		default:
			for i, arg := range args {
				if arg == "-o" && i+1 < len(args) {
					produced = args[i+1]
				}
			}
		}
		if produced != "" {
			if err := os.MkdirAll(filepath.Dir(produced), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(produced, []byte(name), 0o755); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	toolOutput = func(name string, args ...string) (string, error) {
		switch args[0] {
		case "--cflags":
			return "-I/usr/include/mysql", nil
		case "--libs":
			return "-L/usr/lib/mysql -lmysqlclient", nil
		}
		return "", fmt.Errorf("unexpected query %v", args)
	}

	execLookPath = func(file string) (string, error) {
		if ft.missing[file] {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
		}
		return "/usr/bin/" + file, nil
	}

	return ft
}

func (ft *fakeTools) callsTo(name string) []toolCall {
	var calls []toolCall
	for _, call := range ft.calls {
		if call.Name == name {
			calls = append(calls, call)
		}
	}
	return calls
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// connectorTree lays out a small connector package below a fresh build root.
func connectorTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"README.txt",
		"LICENSE.txt",
		"lib/mysql/__init__.py",
		"lib/mysql/connector/__init__.py",
		"lib/mysql/connector/connection.py",
		"lib/mysql/connector/py.typed",
		"lib/mysql/connector/notes.txt",
		"lib/mysql/connector/cursor.pyc",
		"src/exceptions.c",
		"src/mysql_capi.c",
		"src/force_cpp_linkage.cc",
		"src/include/mysql_capi.h",
		"src/include/internal/conversion.h",
	}
	for _, name := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), name+"\n")
	}
	return root
}

func connectorProject(withExtension bool) *setup.Project {
	p := &setup.Project{
		Name:           "mysql-connector-python",
		Description:    "MySQL driver written in Python",
		Author:         "Oracle and/or its affiliates",
		License:        "GNU GPLv2 (with FOSS License Exception)",
		PythonRequires: ">=3.8",
		PackageRoot:    "lib",
		Extras: map[string][]string{
			"dns-srv": {"dnspython>=1.16.0,<2.7.0"},
		},
		MetadataFiles: []string{"README.txt", "LICENSE.txt"},
	}
	if withExtension {
		p.Extensions = []setup.Extension{{
			Name:        "_mysql_connector",
			Sources:     []string{"src/exceptions.c", "src/mysql_capi.c", "src/force_cpp_linkage.cc"},
			IncludeDirs: []string{"src/include"},
		}}
	}
	return p
}

func newDistribution(t *testing.T, p *setup.Project, opts setup.BuildOptions) *setup.Distribution {
	t.Helper()
	registry := setup.NewCommandRegistry(Required()...)
	registry.RegisterOptional(setup.CmdBdistWheel, Lookup)

	desc, err := setup.Compose(p, &setup.VersionInfo{Text: "8.1.0"}, registry, []string{"mysql", "mysql.connector"})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}

	if opts.PlatformTag == "" {
		opts.PlatformTag = "linux-x86_64"
	}
	log, _ := test.NewNullLogger()
	return setup.NewDistribution(desc, opts, log)
}

func run(t *testing.T, dist *setup.Distribution, name string) {
	t.Helper()
	if err := dist.RunCommand(context.Background(), name); err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
}
