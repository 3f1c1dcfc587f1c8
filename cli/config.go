package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/config"
	"github.com/imadenugraha/chacrab/genericclioptions"
)

// NewCmdConfig creates the 'config' command group.
func NewCmdConfig(defaults *DefaultOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and generate local configuration",
	}

	cmd.AddCommand(newConfigGenerateCmd(defaults), newConfigValidateCmd(defaults))

	return cmd
}

type configGenerateOptions struct {
	*DefaultOptions

	path string
}

var _ genericclioptions.CmdOptions = &configGenerateOptions{}

func (*configGenerateOptions) Complete() error { return nil }

func (*configGenerateOptions) Validate() error { return nil }

func (o *configGenerateOptions) Run(_ context.Context, _ ...string) error {
	raw, err := config.GenerateDefault()
	if err != nil {
		return err
	}

	if len(o.path) == 0 {
		o.Printf("%s", raw)
		return nil
	}

	if err := os.WriteFile(o.path, raw, 0o600); err != nil {
		return err
	}

	o.Infof("wrote default preferences to %s\n", o.path)

	return nil
}

func newConfigGenerateCmd(defaults *DefaultOptions) *cobra.Command {
	o := &configGenerateOptions{DefaultOptions: defaults}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print (or write) a commented default preferences file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.path, "path", "", "write to this path instead of stdout")

	return cmd
}

type configValidateOptions struct {
	*DefaultOptions

	path string
}

var _ genericclioptions.CmdOptions = &configValidateOptions{}

func (*configValidateOptions) Complete() error { return nil }

func (*configValidateOptions) Validate() error { return nil }

func (o *configValidateOptions) Run(_ context.Context, _ ...string) error {
	prefs, err := config.LoadPreferences(o.path)
	if err != nil {
		return err
	}

	o.Infof("preferences at %s are valid\n", prefs.Path())

	return nil
}

func newConfigValidateCmd(defaults *DefaultOptions) *cobra.Command {
	o := &configValidateOptions{DefaultOptions: defaults}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the local preferences file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.path, "path", "", "preferences file path (default: platform config dir)")

	return cmd
}
