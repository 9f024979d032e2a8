package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestDescriptor(commands ...Command) *Descriptor {
	return &Descriptor{Name: "demo", Version: "1.0", registry: NewCommandRegistry(commands...)}
}

func TestRunCommandRunsDependenciesOnce(t *testing.T) {
	buildExt := &fakeCommand{name: CmdBuildExt}
	installLib := &fakeCommand{name: CmdInstallLib}
	installLib.fn = func(ctx context.Context, dist *Distribution) error {
		if err := dist.RunCommand(ctx, CmdBuildExt); err != nil {
			return err
		}
		dist.AddOutput(CmdInstallLib, "build/install/demo/__init__.py")
		return nil
	}
	sdist := &fakeCommand{name: CmdSdist, fn: func(ctx context.Context, dist *Distribution) error {
		dist.AddOutput(CmdSdist, "dist/demo-1.0.tar.gz")
		return nil
	}}

	log, _ := test.NewNullLogger()
	dist, err := Setup(context.Background(), newTestDescriptor(buildExt, installLib, sdist), BuildOptions{}, []string{CmdBuildExt, CmdInstallLib, CmdSdist}, log)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	if buildExt.calls != 1 {
		t.Errorf("expected build_ext to run once, ran %d times", buildExt.calls)
	}
	if !dist.HasRun(CmdInstallLib) {
		t.Error("expected install_lib to have run")
	}

	want := []Output{
		{Command: CmdInstallLib, Path: "build/install/demo/__init__.py"},
		{Command: CmdSdist, Path: "dist/demo-1.0.tar.gz"},
	}
	if diff := cmp.Diff(want, dist.Outputs()); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"dist/demo-1.0.tar.gz"}, dist.OutputsOf(CmdSdist)); diff != "" {
		t.Errorf("sdist outputs mismatch (-want +got):\n%s", diff)
	}
	if dist.Options.BuildDir != "build" {
		t.Errorf("expected defaults applied, got build dir %q", dist.Options.BuildDir)
	}
}

func TestSetupWithoutCommands(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := Setup(context.Background(), newTestDescriptor(), BuildOptions{}, nil, log)
	if !errors.Is(err, ErrComposition) {
		t.Fatalf("expected ErrComposition, got %v", err)
	}
}

func TestSetupStopsAtFirstFailure(t *testing.T) {
	failing := &fakeCommand{name: CmdBuildExt, err: errors.New("no compiler")}
	after := &fakeCommand{name: CmdSdist}

	log, _ := test.NewNullLogger()
	dist, err := Setup(context.Background(), newTestDescriptor(failing, after), BuildOptions{}, []string{CmdBuildExt, CmdSdist}, log)
	if !errors.Is(err, ErrComposition) {
		t.Fatalf("expected ErrComposition, got %v", err)
	}
	if after.calls != 0 {
		t.Error("expected later commands to be skipped")
	}
	if dist.HasRun(CmdBuildExt) {
		t.Error("failed command must not be marked as run")
	}
}

func TestBuildOptionsPath(t *testing.T) {
	opts := BuildOptions{Root: "/src/connector"}.WithDefaults()

	if got := opts.Path(opts.BuildDir); got != "/src/connector/build" {
		t.Errorf("Path(build) = %s", got)
	}
	if got := opts.Path("/abs/dist"); got != "/abs/dist" {
		t.Errorf("Path(/abs/dist) = %s", got)
	}
	if opts.Formats != "gztar" || opts.DistDir != "dist" {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestMacroFlag(t *testing.T) {
	if got := (Macro{Name: "PY3", Value: "1"}).Flag(); got != "-DPY3=1" {
		t.Errorf("Flag() = %s", got)
	}
	if got := (Macro{Name: "NDEBUG"}).Flag(); got != "-DNDEBUG" {
		t.Errorf("Flag() = %s", got)
	}
}
