package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/input"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/vaultservice"
)

type updatePasswordOptions struct {
	*DefaultOptions

	idOrPrefix string
	title      string
	username   string
	urlStr     string
}

var _ genericclioptions.CmdOptions = &updatePasswordOptions{}

func newUpdatePasswordOptions(d *DefaultOptions) *updatePasswordOptions {
	return &updatePasswordOptions{DefaultOptions: d}
}

func (*updatePasswordOptions) Complete() error { return nil }

func (o *updatePasswordOptions) Validate() error {
	if len(o.idOrPrefix) == 0 {
		return errRequiredFlag("id")
	}

	return nil
}

func (o *updatePasswordOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	password, err := input.PromptRead(o.Out, o.In, "New password: ")
	if err != nil {
		return err
	}

	patch := vaultservice.Patch{Payload: &model.EncryptedPayload{Password: &password}}
	applyOptionalMetadata(&patch, o.title, o.username, o.urlStr)

	if err := vaultservice.New(repo, session).Update(ctx, o.idOrPrefix, patch); err != nil {
		return err
	}

	o.Infof("updated\n")

	return nil
}

func applyOptionalMetadata(patch *vaultservice.Patch, title, username, urlStr string) {
	if len(title) > 0 {
		patch.Title = &title
	}

	if len(username) > 0 {
		patch.Username = &username
	}

	if len(urlStr) > 0 {
		patch.URL = &urlStr
	}
}

// NewCmdUpdate creates the 'update' command group.
func NewCmdUpdate(defaults *DefaultOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an existing vault item (subcommands available)",
	}

	cmd.AddCommand(newUpdatePasswordCmd(defaults), newUpdateSecretNotesCmd(defaults))

	return cmd
}

func newUpdatePasswordCmd(defaults *DefaultOptions) *cobra.Command {
	o := newUpdatePasswordOptions(defaults)

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Replace the password of an existing item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.idOrPrefix, "id", "", "id or unambiguous id prefix (required)")
	cmd.Flags().StringVar(&o.title, "title", "", "new title")
	cmd.Flags().StringVar(&o.username, "username", "", "new username")
	cmd.Flags().StringVar(&o.urlStr, "url", "", "new url")

	return cmd
}

type updateNotesOptions struct {
	*DefaultOptions

	idOrPrefix string
	title      string
}

var _ genericclioptions.CmdOptions = &updateNotesOptions{}

func (*updateNotesOptions) Complete() error { return nil }

func (o *updateNotesOptions) Validate() error {
	if len(o.idOrPrefix) == 0 {
		return errRequiredFlag("id")
	}

	return nil
}

func (o *updateNotesOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	notes, err := input.PromptRead(o.Out, o.In, "New notes: ")
	if err != nil {
		return err
	}

	patch := vaultservice.Patch{Payload: &model.EncryptedPayload{Notes: &notes}}
	applyOptionalMetadata(&patch, o.title, "", "")

	if err := vaultservice.New(repo, session).Update(ctx, o.idOrPrefix, patch); err != nil {
		return err
	}

	o.Infof("updated\n")

	return nil
}

func newUpdateSecretNotesCmd(defaults *DefaultOptions) *cobra.Command {
	o := &updateNotesOptions{DefaultOptions: defaults}

	cmd := &cobra.Command{
		Use:   "secret-notes",
		Short: "Replace the notes of an existing secure note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.idOrPrefix, "id", "", "id or unambiguous id prefix (required)")
	cmd.Flags().StringVar(&o.title, "title", "", "new title")

	return cmd
}
