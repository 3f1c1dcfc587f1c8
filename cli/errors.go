package cli

import "fmt"

// errRequiredFlag reports a missing required flag as a plain user error,
// not one of chacrab's core error sentinels.
func errRequiredFlag(name string) error {
	return fmt.Errorf("--%s is required", name)
}
