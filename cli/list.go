package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/vaultservice"
)

type listOptions struct {
	*DefaultOptions
}

var _ genericclioptions.CmdOptions = &listOptions{}

func newListOptions(d *DefaultOptions) *listOptions { return &listOptions{DefaultOptions: d} }

func (*listOptions) Complete() error { return nil }

func (*listOptions) Validate() error { return nil }

func (o *listOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	items, err := vaultservice.New(repo, session).List(ctx)
	if err != nil {
		return err
	}

	o.Printf("%s", formatList(items, o.Flags.Quiet))

	return nil
}

// formatList renders item metadata for 'list': one id per line when quiet,
// otherwise tab-separated id/kind/title/username/url. Never touches payload.
func formatList(items []model.VaultItem, quiet bool) string {
	var b strings.Builder

	for _, it := range items {
		if quiet {
			fmt.Fprintf(&b, "%s\n", it.ID)
			continue
		}

		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Kind, it.Title, it.Username, it.URL)
	}

	return b.String()
}

// NewCmdList creates the 'list' command.
func NewCmdList(defaults *DefaultOptions) *cobra.Command {
	o := newListOptions(defaults)

	return &cobra.Command{
		Use:   "list",
		Short: "List vault item metadata (never secret payloads)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}
}
