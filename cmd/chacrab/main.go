// Command chacrab is the zero-knowledge password manager CLI.
package main

import (
	"context"

	"github.com/imadenugraha/chacrab/cli"
	"github.com/imadenugraha/chacrab/clierror"
)

func main() {
	root := cli.NewRootCmd()

	if err := root.ExecuteContext(context.Background()); err != nil {
		_ = clierror.Check(err)
	}
}
