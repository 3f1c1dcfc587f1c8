package genericclioptions

import "github.com/spf13/cobra"

// MarkFlagsHidden hides the named flags from a command's help output
// without removing them, so internal/test-only flags stay usable but
// undocumented.
func MarkFlagsHidden(sub *cobra.Command, names ...string) {
	f := sub.HelpFunc()
	sub.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		for _, n := range names {
			if flag := cmd.Flags().Lookup(n); flag != nil {
				flag.Hidden = true
			}
		}

		f(cmd, args)
	})
}
