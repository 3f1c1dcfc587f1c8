package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/input"
	"github.com/imadenugraha/chacrab/randstring"
	"github.com/imadenugraha/chacrab/vaultservice"
)

const generatedPasswordLength = 20

type addPasswordOptions struct {
	*DefaultOptions

	title, username, urlStr string
	generate                bool
	customFields            []string
}

var _ genericclioptions.CmdOptions = &addPasswordOptions{}

func newAddPasswordOptions(d *DefaultOptions) *addPasswordOptions {
	return &addPasswordOptions{DefaultOptions: d}
}

func (*addPasswordOptions) Complete() error { return nil }

func (o *addPasswordOptions) Validate() error {
	if len(o.title) == 0 {
		return errRequiredFlag("title")
	}

	return nil
}

func (o *addPasswordOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	var password string

	if o.generate {
		p, err := randstring.NewWithPolicy(randstring.PasswordPolicy{
			MinLowercase: 2, MinUppercase: 2, MinDigits: 2, MinSymbols: 2,
			MinLength: generatedPasswordLength,
		})
		if err != nil {
			return err
		}

		password = p
	} else {
		p, err := input.PromptRead(o.Out, o.In, "Password: ")
		if err != nil {
			return err
		}

		password = p
	}

	svc := vaultservice.New(repo, session)

	id, err := svc.CreatePassword(ctx, o.title, o.username, o.urlStr, password, parseCustomFields(o.customFields))
	if err != nil {
		return err
	}

	o.Infof("created %s\n", id)

	if o.generate {
		o.Printf("%s\n", password)
	}

	return nil
}

func parseCustomFields(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	m := make(map[string]string, len(raw))

	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}

	return m
}

// NewCmdAddPassword creates the 'add-password' command.
func NewCmdAddPassword(defaults *DefaultOptions) *cobra.Command {
	o := newAddPasswordOptions(defaults)

	cmd := &cobra.Command{
		Use:   "add-password",
		Short: "Create a new password item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.title, "title", "", "item title (required)")
	cmd.Flags().StringVar(&o.username, "username", "", "associated username")
	cmd.Flags().StringVar(&o.urlStr, "url", "", "associated url")
	cmd.Flags().BoolVar(&o.generate, "generate", false, "generate a random password instead of prompting")
	cmd.Flags().StringSliceVar(&o.customFields, "field", nil, "custom field as key=value (repeatable)")

	return cmd
}

type addNoteOptions struct {
	*DefaultOptions

	title        string
	customFields []string
}

var _ genericclioptions.CmdOptions = &addNoteOptions{}

func newAddNoteOptions(d *DefaultOptions) *addNoteOptions { return &addNoteOptions{DefaultOptions: d} }

func (*addNoteOptions) Complete() error { return nil }

func (o *addNoteOptions) Validate() error {
	if len(o.title) == 0 {
		return errRequiredFlag("title")
	}

	return nil
}

func (o *addNoteOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	notes, err := input.PromptRead(o.Out, o.In, "Notes: ")
	if err != nil {
		return err
	}

	svc := vaultservice.New(repo, session)

	id, err := svc.CreateNote(ctx, o.title, notes, parseCustomFields(o.customFields))
	if err != nil {
		return err
	}

	o.Infof("created %s\n", id)

	return nil
}

// NewCmdAddNote creates the 'add-note' command.
func NewCmdAddNote(defaults *DefaultOptions) *cobra.Command {
	o := newAddNoteOptions(defaults)

	cmd := &cobra.Command{
		Use:   "add-note",
		Short: "Create a new secure note item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.title, "title", "", "item title (required)")
	cmd.Flags().StringSliceVar(&o.customFields, "field", nil, "custom field as key=value (repeatable)")

	return cmd
}
