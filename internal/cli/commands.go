package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDescribeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the composed package descriptor as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := app.runner(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			desc, err := runner.Describe(cmd.Context())
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(desc); err != nil {
				return fmt.Errorf("failed to encode descriptor: %w", err)
			}
			return enc.Close()
		},
	}
}

func newCommandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the registered lifecycle command overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := app.Registry
			if registry == nil {
				registry = DefaultRegistry()
			}
			for _, name := range registry.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
