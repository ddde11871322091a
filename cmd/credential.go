// Git credential helper subcommands, grounded directly on
// inovacc-clonr/cmd/auth_git_credential.go's stdin-scanning
// runGitCredential, generalized to the multi-provider, multi-credential
// get/store/erase trio spec.md §4.7 and §6 specify.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adolar0042/warden/internal/credhelper"
)

var getCmd = &cobra.Command{
	Use:    "get",
	Short:  "Git credential helper: get",
	Hidden: true,
	RunE: func(c *cobra.Command, args []string) error {
		input, err := credhelper.ReadInput(os.Stdin)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), credhelper.DefaultGetTimeout)
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		output, ok, err := app.Get(ctx, input)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return credhelper.WriteOutput(os.Stdout, output)
	},
}

var storeCmd = &cobra.Command{
	Use:    "store",
	Short:  "Git credential helper: store",
	Hidden: true,
	RunE: func(c *cobra.Command, args []string) error {
		_, err := credhelper.ReadInput(os.Stdin)
		return err
	},
}

var eraseCmd = &cobra.Command{
	Use:    "erase",
	Short:  "Git credential helper: erase",
	Hidden: true,
	RunE: func(c *cobra.Command, args []string) error {
		_, err := credhelper.ReadInput(os.Stdin)
		return err
	},
}

func init() {
	rootCmd.AddCommand(getCmd, storeCmd, eraseCmd)
}
