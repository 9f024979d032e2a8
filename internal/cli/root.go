// Package cli provides the command-line front end shared by the connector setup binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	setup "github.com/contriboss/connector-setup"
	"github.com/contriboss/connector-setup/cpydist"
	"github.com/contriboss/connector-setup/internal/logging"
)

// App holds everything one binary needs to drive a setup run.
type App struct {
	Project  *setup.Project
	Registry *setup.CommandRegistry
	// EnvPrefix selects the environment overrides, e.g. MYSQL_CONNECTOR.
	EnvPrefix string

	v         *viper.Viper
	cfgFile   string
	verbosity string
	noColor   bool
}

// DefaultRegistry registers the required overrides and bdist_wheel when it is
// compiled in.
func DefaultRegistry() *setup.CommandRegistry {
	registry := setup.NewCommandRegistry(cpydist.Required()...)
	registry.RegisterOptional(setup.CmdBdistWheel, cpydist.Lookup)
	return registry
}

type flagKind int

const (
	stringFlag flagKind = iota
	boolFlag
	sliceFlag
)

// buildFlags maps command-line flags to BuildOptions keys.
var buildFlags = []struct {
	flag  string
	key   string
	usage string
	kind  flagKind
}{
	{flag: "build-dir", key: "build_dir", usage: "directory for intermediate build files"},
	{flag: "dist-dir", key: "dist_dir", usage: "directory for distribution archives"},
	{flag: "install-dir", key: "install_dir", usage: "directory install_lib copies into"},
	{flag: "record", key: "record", usage: "file listing installed files"},
	{flag: "cc", key: "cc", usage: "C compiler"},
	{flag: "cxx", key: "cxx", usage: "C++ compiler"},
	{flag: "debug", key: "debug", usage: "compile extensions with debugging information", kind: boolFlag},
	{flag: "extra-compile-args", key: "extra_compile_args", usage: "additional compiler arguments", kind: sliceFlag},
	{flag: "extra-link-args", key: "extra_link_args", usage: "additional linker arguments", kind: sliceFlag},
	{flag: "python-include", key: "python_include", usage: "Python header directory"},
	{flag: "with-mysql-capi", key: "with_mysql_capi", usage: "path to mysql_config"},
	{flag: "with-protobuf-include-dir", key: "with_protobuf_include_dir", usage: "protobuf include directory"},
	{flag: "with-protobuf-lib-dir", key: "with_protobuf_lib_dir", usage: "protobuf library directory"},
	{flag: "formats", key: "formats", usage: "archive format (gztar, xztar)"},
	{flag: "label", key: "label", usage: "label appended to archive names"},
	{flag: "python-tag", key: "python_tag", usage: "wheel python tag"},
	{flag: "plat-name", key: "plat_name", usage: "platform name override"},
}

// NewRootCommand builds the cobra command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	app.v = viper.New()

	rootCmd := &cobra.Command{
		Use:   strings.TrimSuffix(app.Project.Name, "-python") + "-setup [command...]",
		Short: fmt.Sprintf("Build and package %s", app.Project.Name),
		Long: fmt.Sprintf(`Runs the packaging lifecycle commands for %s.

Metadata files are staged into the build root for the duration of the run and
removed afterwards. Options come from flags, %s_* environment variables and an
optional setup.toml or setup.yaml in the build root.`, app.Project.Name, app.EnvPrefix),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return app.run(cmd.Context(), cmd.ErrOrStderr(), args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (default: setup.toml or setup.yaml in the build root)")
	flags.String("root", ".", "build root directory")
	flags.StringVarP(&app.verbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&app.noColor, "no-color", false, "disable colored output")
	_ = app.v.BindPFlag("root", flags.Lookup("root"))

	for _, f := range buildFlags {
		switch f.kind {
		case sliceFlag:
			flags.StringSlice(f.flag, nil, f.usage)
		case boolFlag:
			flags.Bool(f.flag, false, f.usage)
		default:
			flags.String(f.flag, "", f.usage)
		}
		_ = app.v.BindPFlag(f.key, flags.Lookup(f.flag))
	}

	rootCmd.AddCommand(newDescribeCmd(app))
	rootCmd.AddCommand(newCommandsCmd(app))
	return rootCmd
}

func (app *App) initConfig() error {
	v := app.v
	v.SetEnvPrefix(app.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// The build root may itself come from the environment.
	if app.cfgFile != "" {
		v.SetConfigFile(app.cfgFile)
	} else {
		v.AddConfigPath(v.GetString("root"))
		v.SetConfigName("setup")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if app.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (app *App) options() (setup.BuildOptions, error) {
	var opts setup.BuildOptions
	if err := app.v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("invalid build options: %w", err)
	}
	opts.Verbose = app.verbosity == "debug" || app.verbosity == "trace"
	return opts.WithDefaults(), nil
}

func (app *App) logger(out io.Writer) *logrus.Logger {
	return logging.New(app.verbosity, out, app.noColor)
}

func (app *App) runner(out io.Writer) (*setup.Runner, error) {
	opts, err := app.options()
	if err != nil {
		return nil, err
	}
	registry := app.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &setup.Runner{
		Project:  app.Project,
		Registry: registry,
		Options:  opts,
		Log:      app.logger(out).WithField("run", uuid.NewString()),
	}, nil
}

func (app *App) run(ctx context.Context, out io.Writer, commands []string) error {
	runner, err := app.runner(out)
	if err != nil {
		return err
	}
	if err := runner.Registry.Validate(); err != nil {
		return err
	}
	return runner.Run(ctx, commands)
}

// Execute runs the command line for app and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", color.RedString("error:"), err)
		return 1
	}
	return 0
}

// Main is the entry point of the setup binaries.
func Main(project *setup.Project, envPrefix string) {
	app := &App{Project: project, EnvPrefix: envPrefix}
	os.Exit(Execute(context.Background(), app, os.Args[1:]))
}
